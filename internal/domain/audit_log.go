package domain

import "time"

const (
	ActionCreateOrder  = "CREATE_ORDER"
	ActionUpdateOrder  = "UPDATE_ORDER"
	ActionDeleteOrder  = "DELETE_ORDER"
	ActionRestoreOrder = "RESTORE_ORDER"
)

// AuditLog rows are append-only; nothing in the engine updates or
// deletes them.
type AuditLog struct {
	ID        string         `json:"id" gorm:"primaryKey;type:char(36)"`
	UserID    uint64         `json:"userId" gorm:"not null;index"`
	Action    string         `json:"action" gorm:"type:varchar(255);not null"`
	Details   map[string]any `json:"details,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}
