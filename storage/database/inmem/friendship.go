package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ratiba/core/friendship"
)

type friendshipRepository struct {
	db *friendshipTable
}

var _ friendship.Repository = (*friendshipRepository)(nil) // interface compliance check

func NewFriendshipRepository(db *DB) friendship.Repository {
	return &friendshipRepository{db: db.friendship}
}

func (repo *friendshipRepository) CreateRequest(_ context.Context, req friendship.FriendRequest) (friendship.FriendRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.requests[req.ID] = &req
	return req, nil
}

func (repo *friendshipRepository) GetRequestByID(_ context.Context, id string) (friendship.FriendRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.requests[id]; ok {
		return *req, nil
	}
	return friendship.FriendRequest{}, friendship.ErrNotFound
}

func (repo *friendshipRepository) GetRequestBetween(_ context.Context, userID, otherID string) (friendship.FriendRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, req := range repo.db.requests {
		if (req.FromUserID == userID && req.ToUserID == otherID) ||
			(req.FromUserID == otherID && req.ToUserID == userID) {
			return *req, nil
		}
	}
	return friendship.FriendRequest{}, friendship.ErrNotFound
}

func (repo *friendshipRepository) QueryRequestsToUser(_ context.Context, toUserID string, status friendship.Status) ([]friendship.FriendRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reqs := make([]friendship.FriendRequest, 0)
	for _, req := range repo.db.requests {
		if req.ToUserID == toUserID && req.Status == status {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[j].CreatedAt.Before(reqs[i].CreatedAt) })
	return reqs, nil
}

func (repo *friendshipRepository) QueryRequestsByUser(_ context.Context, userID string) ([]friendship.FriendRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reqs := make([]friendship.FriendRequest, 0)
	for _, req := range repo.db.requests {
		if req.FromUserID == userID || req.ToUserID == userID {
			reqs = append(reqs, *req)
		}
	}
	return reqs, nil
}

func (repo *friendshipRepository) UpdateRequest(_ context.Context, req friendship.FriendRequest) (friendship.FriendRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.requests[req.ID]; !ok {
		return friendship.FriendRequest{}, friendship.ErrNotFound
	}
	repo.db.requests[req.ID] = &req
	return req, nil
}

func (repo *friendshipRepository) AddFriends(_ context.Context, userID, friendID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	link := func(a, b string) {
		for _, id := range repo.db.friends[a] {
			if id == b {
				return
			}
		}
		repo.db.friends[a] = append(repo.db.friends[a], b)
	}
	link(userID, friendID)
	link(friendID, userID)
	return nil
}

func (repo *friendshipRepository) QueryFriendIDs(_ context.Context, userID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, len(repo.db.friends[userID]))
	copy(ids, repo.db.friends[userID])
	return ids, nil
}
