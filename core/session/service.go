package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/scheduler"
	"github.com/trezcool/ratiba/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("study session not found")
	ErrAlreadyJoined = errors.New("this user is already participating in this session")

	// autoSessionTitle names scheduler-placed sessions.
	autoSessionTitle = "Study session"

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess StudySession) (StudySession, error)
		GetSessionByID(ctx context.Context, id string) (StudySession, error)
		// QuerySessionsByUserID returns the sessions a user hosts or
		// participates in whose Start falls in [from, to).
		QuerySessionsByUserID(ctx context.Context, userID string, from, to time.Time) ([]StudySession, error)
		// QuerySessionsStartingBetween returns all sessions with Start in
		// [from, to), regardless of user. Used by the reminder job.
		QuerySessionsStartingBetween(ctx context.Context, from, to time.Time) ([]StudySession, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error

		// AddParticipant returns ErrAlreadyJoined when the (session, user)
		// pair already exists.
		AddParticipant(ctx context.Context, p Participant) (Participant, error)
		QueryParticipants(ctx context.Context, sessionID string) ([]Participant, error)
	}

	Service interface {
		Create(ctx context.Context, hostID string, ns NewStudySession) (StudySession, error)
		GetByID(ctx context.Context, id string) (StudySession, error)
		Query(ctx context.Context, userID string, from, to time.Time) ([]StudySession, error)
		Delete(ctx context.Context, ids ...string) error

		Join(ctx context.Context, sessionID string, usr user.User) (Participant, error)
		Participants(ctx context.Context, sessionID string) ([]Participant, error)

		// AutoSchedule plans the best slot for the coming week and materializes
		// it as a session on the given calendar.
		AutoSchedule(ctx context.Context, userID, calendarID string) (StudySession, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		notifSvc notification.Service
		sched    *scheduler.Scheduler
	}
)

func NewService(db core.DB, repo Repository, notifSvc notification.Service, sched *scheduler.Scheduler) Service {
	return &service{
		db:       db,
		repo:     repo,
		notifSvc: notifSvc,
		sched:    sched,
	}
}

func (svc *service) Create(ctx context.Context, hostID string, ns NewStudySession) (StudySession, error) {
	start := ns.Start.UTC()
	occurrences := ns.Occurrences
	if !ns.IsRecurring {
		occurrences = 0
	}
	sess := StudySession{
		ID:          uuid.New().String(),
		HostID:      hostID,
		CalendarID:  ns.CalendarID,
		Title:       ns.Title,
		Description: ns.Description,
		Date:        start.Truncate(24 * time.Hour),
		Start:       start,
		End:         ns.End.UTC(),
		IsRecurring: ns.IsRecurring,
		Occurrences: occurrences,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *service) GetByID(ctx context.Context, id string) (StudySession, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, userID string, from, to time.Time) ([]StudySession, error) {
	return svc.repo.QuerySessionsByUserID(ctx, userID, from.UTC(), to.UTC())
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSessionsByID(ctx, ids...)
}

// Join adds usr to the session's participants and notifies the host, unless
// the host is joining their own session.
func (svc *service) Join(ctx context.Context, sessionID string, usr user.User) (Participant, error) {
	sess, err := svc.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Participant{}, err
	}

	p, err := svc.repo.AddParticipant(ctx, Participant{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		UserID:    usr.ID,
		JoinedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Participant{}, err
	}

	if sess.HostID != usr.ID {
		msg := fmt.Sprintf("%s joined your study session '%s'", usr.Username, sess.Title)
		if _, err := svc.notifSvc.Notify(ctx, sess.HostID, msg); err != nil {
			return Participant{}, pkgerrors.Wrap(err, "notifying host")
		}
	}
	return p, nil
}

func (svc *service) Participants(ctx context.Context, sessionID string) ([]Participant, error) {
	if _, err := svc.repo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return svc.repo.QueryParticipants(ctx, sessionID)
}

func (svc *service) AutoSchedule(ctx context.Context, userID, calendarID string) (StudySession, error) {
	pl, err := svc.sched.Plan(ctx, userID, nowFunc().UTC())
	if err != nil {
		return StudySession{}, err
	}

	sess := StudySession{
		ID:         uuid.New().String(),
		HostID:     userID,
		CalendarID: calendarID,
		Title:      autoSessionTitle,
		Date:       pl.Date,
		Start:      pl.Start,
		End:        pl.End(),
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateSession(ctx, sess)
}
