package services

import (
	"context"
	"fmt"
	"log"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/infra/channels"
	"fulfillment-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Notifier is the orchestrator's view of the dispatcher.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uint64, message, notifType string) (*domain.Notification, error)
	NotifyAdmins(ctx context.Context, message, notifType string) error
}

// PushRegistry is the live-connection lookup for the real-time channel.
type PushRegistry interface {
	Push(userID uint64, payload any) (delivered bool, err error)
}

// NotificationService fans a message out to the user's channels. The
// notification row is persisted before any channel is attempted, and
// each channel's outcome lands on the row as an independent flag, so a
// dead channel can never lose the fact that dispatch was attempted.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.ReferenceRepository
	email         channels.EmailSender
	sms           channels.SMSSender
	push          PushRegistry
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.ReferenceRepository,
	email channels.EmailSender,
	sms channels.SMSSender,
	push PushRegistry,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		email:         email,
		sms:           sms,
		push:          push,
	}
}

var _ Notifier = (*NotificationService)(nil)
var _ AdminNotifier = (*NotificationService)(nil)

func (s *NotificationService) NotifyUser(ctx context.Context, userID uint64, message, notifType string) (*domain.Notification, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}

	n := &domain.Notification{
		UserID:  userID,
		Message: message,
		Type:    notifType,
	}
	if err := s.notifications.Save(ctx, n); err != nil {
		return nil, err
	}

	s.dispatch(ctx, user, n)

	if err := s.notifications.UpdateDeliveryFlags(ctx, n); err != nil {
		log.Printf("failed to record delivery flags for notification %d: %v", n.ID, err)
	}
	return n, nil
}

func (s *NotificationService) NotifyAdmins(ctx context.Context, message, notifType string) error {
	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if _, err := s.NotifyUser(ctx, admin.ID, message, notifType); err != nil {
			log.Printf("failed to notify admin %d: %v", admin.ID, err)
		}
	}
	return nil
}

// dispatch attempts each channel independently and concurrently. A
// channel failure is logged and reflected on the notification's flag;
// it never reaches the caller. Each goroutine writes its own flag
// field, so no further synchronization is needed.
func (s *NotificationService) dispatch(ctx context.Context, user *domain.User, n *domain.Notification) {
	g := new(errgroup.Group)

	if s.push != nil {
		g.Go(func() error {
			delivered, err := s.push.Push(user.ID, n)
			if err != nil {
				log.Printf("push to user %d failed: %v", user.ID, err)
				return nil
			}
			// An offline user is "deliver later", not a failure; the
			// row itself is the durable record.
			n.PushSent = delivered
			return nil
		})
	}

	if s.email != nil && user.Email != "" {
		g.Go(func() error {
			if err := s.email.Send(ctx, user.Email, "Order Update", n.Message); err != nil {
				log.Printf("email to %s failed: %v", user.Email, err)
				return nil
			}
			n.EmailSent = true
			return nil
		})
	}

	if s.sms != nil && user.MobileNumber != "" {
		g.Go(func() error {
			if err := s.sms.Send(ctx, user.MobileNumber, n.Message); err != nil {
				log.Printf("sms to %s failed: %v", user.MobileNumber, err)
				return nil
			}
			n.SmsSent = true
			return nil
		})
	}

	_ = g.Wait()
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uint64) ([]domain.Notification, error) {
	return s.notifications.FindByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) error {
	return s.notifications.MarkRead(ctx, id, userID)
}
