package notification

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	notifs map[string]Notification
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{notifs: make(map[string]Notification)}
}

func (r *fakeRepository) CreateNotification(_ context.Context, notif Notification) (Notification, error) {
	r.notifs[notif.ID] = notif
	return notif, nil
}

func (r *fakeRepository) GetNotificationByID(_ context.Context, id string) (Notification, error) {
	if notif, ok := r.notifs[id]; ok {
		return notif, nil
	}
	return Notification{}, ErrNotFound
}

func (r *fakeRepository) QueryNotificationsByUserID(_ context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	for _, notif := range r.notifs {
		if notif.UserID != userID {
			continue
		}
		if unreadOnly && notif.IsRead {
			continue
		}
		out = append(out, notif)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepository) UpdateNotification(_ context.Context, notif Notification) (Notification, error) {
	if _, ok := r.notifs[notif.ID]; !ok {
		return Notification{}, ErrNotFound
	}
	r.notifs[notif.ID] = notif
	return notif, nil
}

func TestNotifyAndMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, newFakeRepository())

	notif, err := svc.Notify(ctx, "host", "jdoe joined your study session 'Databases'")
	require.NoError(t, err)
	assert.False(t, notif.IsRead)

	unread, err := svc.Query(ctx, "host", true /* unreadOnly */)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	// only the owner can mark it read
	_, err = svc.MarkRead(ctx, notif.ID, "intruder")
	assert.Equal(t, ErrNotFound, err)

	read, err := svc.MarkRead(ctx, notif.ID, "host")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err = svc.Query(ctx, "host", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// marking twice is a no-op
	_, err = svc.MarkRead(ctx, notif.ID, "host")
	assert.NoError(t, err)

	all, err := svc.Query(ctx, "host", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
