package channels

import (
	"log"
	"sync"
)

// Conn is one live real-time connection. Implementations wrap whatever
// transport the edge uses (websocket, SSE).
type Conn interface {
	Send(payload any) error
}

// Registry maps user ids to their active connection. A user with no
// connection is not an error; the notification row is the durable
// record and the message is delivered later.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]Conn)}
}

func (r *Registry) Connect(userID uint64, c Conn) {
	r.mu.Lock()
	r.conns[userID] = c
	r.mu.Unlock()
	log.Printf("user %d connected", userID)
}

func (r *Registry) Disconnect(userID uint64) {
	r.mu.Lock()
	delete(r.conns, userID)
	r.mu.Unlock()
	log.Printf("user %d disconnected", userID)
}

// Push sends payload to the user's live connection. delivered is false
// when the user has no connection.
func (r *Registry) Push(userID uint64, payload any) (delivered bool, err error) {
	r.mu.RLock()
	c, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := c.Send(payload); err != nil {
		return false, err
	}
	return true, nil
}
