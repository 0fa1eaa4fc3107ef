package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/ratiba/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess session.StudySession) (session.StudySession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) GetSessionByID(_ context.Context, id string) (session.StudySession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return session.StudySession{}, session.ErrNotFound
}

func (repo *sessionRepository) QuerySessionsByUserID(_ context.Context, userID string, from, to time.Time) ([]session.StudySession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	joined := make(map[string]struct{})
	for _, p := range repo.db.participants {
		if p.UserID == userID {
			joined[p.SessionID] = struct{}{}
		}
	}

	sessions := make([]session.StudySession, 0)
	for _, sess := range repo.db.sessions {
		_, participates := joined[sess.ID]
		if sess.HostID != userID && !participates {
			continue
		}
		if sess.Start.Before(from) || !sess.Start.Before(to) {
			continue
		}
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })
	return sessions, nil
}

func (repo *sessionRepository) QuerySessionsStartingBetween(_ context.Context, from, to time.Time) ([]session.StudySession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]session.StudySession, 0)
	for _, sess := range repo.db.sessions {
		if sess.Start.Before(from) || !sess.Start.Before(to) {
			continue
		}
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })
	return sessions, nil
}

func (repo *sessionRepository) DeleteSessionsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.sessions, id)
		for pID, p := range repo.db.participants {
			if p.SessionID == id {
				delete(repo.db.participants, pID)
			}
		}
	}
	return nil
}

func (repo *sessionRepository) AddParticipant(_ context.Context, p session.Participant) (session.Participant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.participants {
		if existing.SessionID == p.SessionID && existing.UserID == p.UserID {
			return session.Participant{}, session.ErrAlreadyJoined
		}
	}
	repo.db.participants[p.ID] = &p
	return p, nil
}

func (repo *sessionRepository) QueryParticipants(_ context.Context, sessionID string) ([]session.Participant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ps := make([]session.Participant, 0)
	for _, p := range repo.db.participants {
		if p.SessionID == sessionID {
			ps = append(ps, *p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].JoinedAt.Before(ps[j].JoinedAt) })
	return ps, nil
}
