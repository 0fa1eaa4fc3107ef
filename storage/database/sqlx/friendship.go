package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/friendship"
)

type friendRequestRow struct {
	ID          string    `db:"id"`
	FromUserID  string    `db:"from_user_id"`
	ToUserID    string    `db:"to_user_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	RespondedAt null.Time `db:"responded_at"`
}

func (r friendRequestRow) unpack() friendship.FriendRequest {
	return friendship.FriendRequest{
		ID:          r.ID,
		FromUserID:  r.FromUserID,
		ToUserID:    r.ToUserID,
		Status:      friendship.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}

type friendshipRepository struct {
	db *sqlx.DB
}

var _ friendship.Repository = (*friendshipRepository)(nil) // interface compliance check

func NewFriendshipRepository(db *sqlx.DB) *friendshipRepository {
	return &friendshipRepository{db: db}
}

func (repo friendshipRepository) CreateRequest(ctx context.Context, req friendship.FriendRequest) (friendship.FriendRequest, error) {
	q := `
		INSERT INTO friend_request (id, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q, req.ID, req.FromUserID, req.ToUserID, string(req.Status), req.CreatedAt)
	if err != nil {
		return friendship.FriendRequest{}, errors.Wrap(err, "inserting friend request")
	}
	return req, nil
}

func (repo friendshipRepository) GetRequestByID(ctx context.Context, id string) (friendship.FriendRequest, error) {
	var row friendRequestRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM friend_request WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return friendship.FriendRequest{}, friendship.ErrNotFound
		}
		return friendship.FriendRequest{}, errors.Wrap(err, "finding friend request by ID")
	}
	return row.unpack(), nil
}

func (repo friendshipRepository) GetRequestBetween(ctx context.Context, userID, otherID string) (friendship.FriendRequest, error) {
	q := `
		SELECT * FROM friend_request
		WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)
		LIMIT 1`
	var row friendRequestRow
	if err := repo.db.GetContext(ctx, &row, q, userID, otherID); err != nil {
		if err == sql.ErrNoRows {
			return friendship.FriendRequest{}, friendship.ErrNotFound
		}
		return friendship.FriendRequest{}, errors.Wrap(err, "finding friend request")
	}
	return row.unpack(), nil
}

func (repo friendshipRepository) QueryRequestsToUser(ctx context.Context, toUserID string, status friendship.Status) ([]friendship.FriendRequest, error) {
	q := `SELECT * FROM friend_request WHERE to_user_id = $1 AND status = $2 ORDER BY created_at DESC`
	var rows []friendRequestRow
	if err := repo.db.SelectContext(ctx, &rows, q, toUserID, string(status)); err != nil {
		return nil, errors.Wrap(err, "querying friend requests")
	}
	reqs := make([]friendship.FriendRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.unpack())
	}
	return reqs, nil
}

func (repo friendshipRepository) QueryRequestsByUser(ctx context.Context, userID string) ([]friendship.FriendRequest, error) {
	q := `SELECT * FROM friend_request WHERE from_user_id = $1 OR to_user_id = $1`
	var rows []friendRequestRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying friend requests")
	}
	reqs := make([]friendship.FriendRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.unpack())
	}
	return reqs, nil
}

func (repo friendshipRepository) UpdateRequest(ctx context.Context, req friendship.FriendRequest) (friendship.FriendRequest, error) {
	q := `UPDATE friend_request SET status = $2, responded_at = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, req.ID, string(req.Status), req.RespondedAt)
	if err != nil {
		return friendship.FriendRequest{}, errors.Wrap(err, "updating friend request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return friendship.FriendRequest{}, friendship.ErrNotFound
	}
	return req, nil
}

func (repo friendshipRepository) AddFriends(ctx context.Context, userID, friendID string) error {
	q := `
		INSERT INTO friendship (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, q, userID, friendID)
	return errors.Wrap(err, "linking friends")
}

func (repo friendshipRepository) QueryFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := repo.db.SelectContext(ctx, &ids, `SELECT friend_id FROM friendship WHERE user_id = $1`, userID); err != nil {
		return nil, errors.Wrap(err, "querying friends")
	}
	return ids, nil
}
