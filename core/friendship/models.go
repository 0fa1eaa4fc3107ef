package friendship

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// FriendRequest is a one-shot invitation from one user to another. Only the
// recipient can respond; accepting links both users as friends.
type FriendRequest struct {
	ID          string    `json:"id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	RespondedAt null.Time `json:"responded_at"`
}
