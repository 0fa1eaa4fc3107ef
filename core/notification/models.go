package notification

import (
	"time"
)

// Notification is a short in-app message for a user, produced by domain
// events (study-session joins, friend requests, reminders).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}
