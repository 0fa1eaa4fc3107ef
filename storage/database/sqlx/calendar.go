package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
)

type calendarRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r calendarRow) unpack() calendar.Calendar {
	return calendar.Calendar{ID: r.ID, UserID: r.UserID, Name: r.Name, CreatedAt: r.CreatedAt}
}

type eventRow struct {
	ID          string    `db:"id"`
	CalendarID  string    `db:"calendar_id"`
	Title       string    `db:"title"`
	StartAt     time.Time `db:"start_at"`
	EndAt       null.Time `db:"end_at"`
	Description string    `db:"description"`
	RRule       string    `db:"rrule"`
	Type        string    `db:"type"`
}

func (r eventRow) unpack() calendar.Event {
	return calendar.Event{
		ID:          r.ID,
		CalendarID:  r.CalendarID,
		Title:       r.Title,
		Start:       r.StartAt,
		End:         r.EndAt,
		Description: r.Description,
		RRule:       r.RRule,
		Type:        calendar.EventType(r.Type),
	}
}

type calendarRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*calendarRepository)(nil) // interface compliance check

func NewCalendarRepository(db *sqlx.DB) *calendarRepository {
	return &calendarRepository{db: db}
}

func (repo calendarRepository) CreateCalendar(ctx context.Context, cal calendar.Calendar) (calendar.Calendar, error) {
	q := `INSERT INTO calendar (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, cal.ID, cal.UserID, cal.Name, cal.CreatedAt); err != nil {
		return calendar.Calendar{}, errors.Wrap(err, "inserting calendar")
	}
	return cal, nil
}

func (repo calendarRepository) GetCalendarByID(ctx context.Context, id string) (calendar.Calendar, error) {
	var row calendarRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM calendar WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return calendar.Calendar{}, calendar.ErrNotFound
		}
		return calendar.Calendar{}, errors.Wrap(err, "finding calendar by ID")
	}
	return row.unpack(), nil
}

func (repo calendarRepository) QueryCalendarsByUserID(ctx context.Context, userID string, ordering ...core.DBOrdering) ([]calendar.Calendar, error) {
	q := `SELECT * FROM calendar WHERE user_id = $1`
	if len(ordering) > 0 {
		q += " ORDER BY " + ordering[0].String()
	}
	var rows []calendarRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying calendars")
	}
	cals := make([]calendar.Calendar, 0, len(rows))
	for _, row := range rows {
		cals = append(cals, row.unpack())
	}
	return cals, nil
}

func (repo calendarRepository) DeleteCalendarsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	// events cascade
	_, err := repo.db.ExecContext(ctx, `DELETE FROM calendar WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting calendars")
}

func (repo calendarRepository) CreateEvents(ctx context.Context, evts ...calendar.Event) ([]calendar.Event, error) {
	if len(evts) == 0 {
		return evts, nil
	}
	q := `
		INSERT INTO event (id, calendar_id, title, start_at, end_at, description, rrule, type)
		VALUES (:id, :calendar_id, :title, :start_at, :end_at, :description, :rrule, :type)`
	rows := make([]eventRow, 0, len(evts))
	for _, evt := range evts {
		rows = append(rows, eventRow{
			ID:          evt.ID,
			CalendarID:  evt.CalendarID,
			Title:       evt.Title,
			StartAt:     evt.Start,
			EndAt:       evt.End,
			Description: evt.Description,
			RRule:       evt.RRule,
			Type:        string(evt.Type),
		})
	}
	if _, err := repo.db.NamedExecContext(ctx, q, rows); err != nil {
		return nil, errors.Wrap(err, "inserting events")
	}
	return evts, nil
}

func (repo calendarRepository) GetEventByID(ctx context.Context, id string) (calendar.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM event WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return calendar.Event{}, calendar.ErrEventNotFound
		}
		return calendar.Event{}, errors.Wrap(err, "finding event by ID")
	}
	return row.unpack(), nil
}

func (repo calendarRepository) QueryEventsByUserID(ctx context.Context, userID string, from, to time.Time) ([]calendar.Event, error) {
	q := `
		SELECT e.* FROM event e
		JOIN calendar c ON c.id = e.calendar_id
		WHERE c.user_id = $1 AND e.start_at >= $2 AND e.start_at < $3
		ORDER BY e.start_at`
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	evts := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		evts = append(evts, row.unpack())
	}
	return evts, nil
}

func (repo calendarRepository) UpdateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	q := `
		UPDATE event
		SET title = $2, start_at = $3, end_at = $4, description = $5, rrule = $6, type = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		evt.ID, evt.Title, evt.Start, evt.End, evt.Description, evt.RRule, string(evt.Type))
	if err != nil {
		return calendar.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return calendar.Event{}, calendar.ErrEventNotFound
	}
	return evt, nil
}

func (repo calendarRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM event WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting events")
}
