package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/session"
)

type sessionRow struct {
	ID          string    `db:"id"`
	HostID      string    `db:"host_id"`
	CalendarID  string    `db:"calendar_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Date        time.Time `db:"date"`
	StartAt     time.Time `db:"start_at"`
	EndAt       time.Time `db:"end_at"`
	IsRecurring bool      `db:"is_recurring"`
	Occurrences int       `db:"occurrences"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r sessionRow) unpack() session.StudySession {
	return session.StudySession{
		ID:          r.ID,
		HostID:      r.HostID,
		CalendarID:  r.CalendarID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Start:       r.StartAt,
		End:         r.EndAt,
		IsRecurring: r.IsRecurring,
		Occurrences: r.Occurrences,
		CreatedAt:   r.CreatedAt,
	}
}

type participantRow struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	JoinedAt  time.Time `db:"joined_at"`
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo sessionRepository) CreateSession(ctx context.Context, sess session.StudySession) (session.StudySession, error) {
	q := `
		INSERT INTO study_session
			(id, host_id, calendar_id, title, description, date, start_at, end_at, is_recurring, occurrences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		sess.ID, sess.HostID, sess.CalendarID, sess.Title, sess.Description,
		sess.Date, sess.Start, sess.End, sess.IsRecurring, sess.Occurrences, sess.CreatedAt,
	)
	if err != nil {
		return session.StudySession{}, errors.Wrap(err, "inserting study session")
	}
	return sess, nil
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id string) (session.StudySession, error) {
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM study_session WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return session.StudySession{}, session.ErrNotFound
		}
		return session.StudySession{}, errors.Wrap(err, "finding study session by ID")
	}
	return row.unpack(), nil
}

func (repo sessionRepository) QuerySessionsByUserID(ctx context.Context, userID string, from, to time.Time) ([]session.StudySession, error) {
	q := `
		SELECT DISTINCT s.* FROM study_session s
		LEFT JOIN session_participant p ON p.session_id = s.id
		WHERE (s.host_id = $1 OR p.user_id = $1) AND s.start_at >= $2 AND s.start_at < $3
		ORDER BY s.start_at`
	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	sessions := make([]session.StudySession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.unpack())
	}
	return sessions, nil
}

func (repo sessionRepository) QuerySessionsStartingBetween(ctx context.Context, from, to time.Time) ([]session.StudySession, error) {
	q := `SELECT * FROM study_session WHERE start_at >= $1 AND start_at < $2 ORDER BY start_at`
	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, q, from, to); err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	sessions := make([]session.StudySession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.unpack())
	}
	return sessions, nil
}

func (repo sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM study_session WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting study sessions")
}

func (repo sessionRepository) AddParticipant(ctx context.Context, p session.Participant) (session.Participant, error) {
	q := `
		INSERT INTO session_participant (id, session_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, p.ID, p.SessionID, p.UserID, p.JoinedAt); err != nil {
		// unique_participation constraint
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return session.Participant{}, session.ErrAlreadyJoined
		}
		return session.Participant{}, errors.Wrap(err, "inserting participant")
	}
	return p, nil
}

func (repo sessionRepository) QueryParticipants(ctx context.Context, sessionID string) ([]session.Participant, error) {
	q := `SELECT * FROM session_participant WHERE session_id = $1 ORDER BY joined_at`
	var rows []participantRow
	if err := repo.db.SelectContext(ctx, &rows, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying participants")
	}
	ps := make([]session.Participant, 0, len(rows))
	for _, row := range rows {
		ps = append(ps, session.Participant(row))
	}
	return ps, nil
}
