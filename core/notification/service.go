package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		// QueryNotificationsByUserID returns a user's notifications, newest
		// first; unreadOnly limits it to the unread ones.
		QueryNotificationsByUserID(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
		UpdateNotification(ctx context.Context, notif Notification) (Notification, error)
	}

	Service interface {
		Notify(ctx context.Context, userID, message string) (Notification, error)
		Query(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
		MarkRead(ctx context.Context, id, userID string) (Notification, error)
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (svc *service) Notify(ctx context.Context, userID, message string) (Notification, error) {
	notif := Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

func (svc *service) Query(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUserID(ctx, userID, unreadOnly)
}

// MarkRead flips the read flag; a user can only touch their own
// notifications.
func (svc *service) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != userID {
		return Notification{}, ErrNotFound
	}
	if notif.IsRead {
		return notif, nil
	}
	notif.IsRead = true
	return svc.repo.UpdateNotification(ctx, notif)
}
