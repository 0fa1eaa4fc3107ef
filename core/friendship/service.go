package friendship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("friend request not found")
	ErrRequestExists = errors.New("a friend request already exists between these users")
	ErrNotRecipient  = errors.New("only the recipient can respond to a friend request")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req FriendRequest) (FriendRequest, error)
		GetRequestByID(ctx context.Context, id string) (FriendRequest, error)
		// GetRequestBetween matches either direction; returns ErrNotFound when
		// none exists.
		GetRequestBetween(ctx context.Context, userID, otherID string) (FriendRequest, error)
		QueryRequestsToUser(ctx context.Context, toUserID string, status Status) ([]FriendRequest, error)
		// QueryRequestsByUser returns all requests a user sent or received,
		// regardless of status.
		QueryRequestsByUser(ctx context.Context, userID string) ([]FriendRequest, error)
		UpdateRequest(ctx context.Context, req FriendRequest) (FriendRequest, error)

		// AddFriends links both users, both ways.
		AddFriends(ctx context.Context, userID, friendID string) error
		QueryFriendIDs(ctx context.Context, userID string) ([]string, error)
	}

	Service interface {
		SendRequest(ctx context.Context, fromUsr user.User, toUserID string) (FriendRequest, error)
		Respond(ctx context.Context, requestID string, usr user.User, accept bool) (FriendRequest, error)
		PendingRequests(ctx context.Context, userID string) ([]FriendRequest, error)
		FriendIDs(ctx context.Context, userID string) ([]string, error)
		// ExcludedUserIDs returns the ids that must not show up in a user's
		// discoverable-users list: themselves, their friends and anyone with an
		// in-flight or past request either way.
		ExcludedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		notifSvc notification.Service
	}
)

func NewService(db core.DB, repo Repository, notifSvc notification.Service) Service {
	return &service{db: db, repo: repo, notifSvc: notifSvc}
}

func (svc *service) SendRequest(ctx context.Context, fromUsr user.User, toUserID string) (FriendRequest, error) {
	if fromUsr.ID == toUserID {
		return FriendRequest{}, core.NewValidationError(nil, core.FieldError{Field: "to_user_id", Error: "cannot send a friend request to yourself"})
	}

	if _, err := svc.repo.GetRequestBetween(ctx, fromUsr.ID, toUserID); err == nil {
		return FriendRequest{}, core.NewValidationError(ErrRequestExists, core.FieldError{Field: "to_user_id", Error: ErrRequestExists.Error()})
	} else if err != ErrNotFound {
		return FriendRequest{}, err
	}

	req, err := svc.repo.CreateRequest(ctx, FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: fromUsr.ID,
		ToUserID:   toUserID,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return FriendRequest{}, err
	}

	msg := fmt.Sprintf("%s sent you a friend request", fromUsr.Username)
	if _, err := svc.notifSvc.Notify(ctx, toUserID, msg); err != nil {
		return FriendRequest{}, pkgerrors.Wrap(err, "notifying recipient")
	}
	return req, nil
}

func (svc *service) Respond(ctx context.Context, requestID string, usr user.User, accept bool) (FriendRequest, error) {
	req, err := svc.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return FriendRequest{}, err
	}
	if req.ToUserID != usr.ID {
		return FriendRequest{}, ErrNotRecipient
	}
	if req.Status != StatusPending {
		return FriendRequest{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "friend request already responded to"})
	}

	req.Status = StatusRejected
	if accept {
		req.Status = StatusAccepted
	}
	req.RespondedAt = null.TimeFrom(time.Now().UTC())

	req, err = svc.repo.UpdateRequest(ctx, req)
	if err != nil {
		return FriendRequest{}, err
	}

	if accept {
		if err := svc.repo.AddFriends(ctx, req.FromUserID, req.ToUserID); err != nil {
			return FriendRequest{}, pkgerrors.Wrap(err, "linking friends")
		}
		msg := fmt.Sprintf("%s accepted your friend request", usr.Username)
		if _, err := svc.notifSvc.Notify(ctx, req.FromUserID, msg); err != nil {
			return FriendRequest{}, pkgerrors.Wrap(err, "notifying requester")
		}
	}
	return req, nil
}

func (svc *service) PendingRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	return svc.repo.QueryRequestsToUser(ctx, userID, StatusPending)
}

func (svc *service) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return svc.repo.QueryFriendIDs(ctx, userID)
}

func (svc *service) ExcludedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	excluded := map[string]struct{}{userID: {}}

	friends, err := svc.repo.QueryFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range friends {
		excluded[id] = struct{}{}
	}

	reqs, err := svc.repo.QueryRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		excluded[req.FromUserID] = struct{}{}
		excluded[req.ToUserID] = struct{}{}
	}
	return excluded, nil
}
