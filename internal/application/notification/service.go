package notification

import (
	"context"
	"fmt"

	"github.com/rarepair-api/internal/domain"
)

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type Service interface {
	// ListUnread returns the caller's unread notifications, newest first.
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	// MarkAsRead flips a notification to read. Only the owner may do so.
	MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
}

type service struct {
	notifications notificationStore
}

func NewService(notifications notificationStore) Service {
	return &service{notifications: notifications}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := s.notifications.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *service) MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.Readed == 1 {
		return n, nil
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}
