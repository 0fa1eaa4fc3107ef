package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/calendar"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCalendar(t *testing.T, repo calendar.Repository, userID, name string) calendar.Calendar {
	cal, err := repo.CreateCalendar(context.Background(), calendar.Calendar{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCalendar() failed: %v", err)
	}
	return cal
}

func CreateEvent(t *testing.T, repo calendar.Repository, calID, title string, start, end time.Time) calendar.Event {
	evt := calendar.Event{
		ID:         uuid.New().String(),
		CalendarID: calID,
		Title:      title,
		Start:      start.UTC(),
		Type:       calendar.EventTypeEvent,
	}
	if !end.IsZero() {
		evt.End.SetValid(end.UTC())
	}
	evts, err := repo.CreateEvents(context.Background(), evt)
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return evts[0]
}

func CreateSession(t *testing.T, repo session.Repository, hostID, calID, title string, start, end time.Time) session.StudySession {
	sess, err := repo.CreateSession(context.Background(), session.StudySession{
		ID:         uuid.New().String(),
		HostID:     hostID,
		CalendarID: calID,
		Title:      title,
		Date:       start.UTC().Truncate(24 * time.Hour),
		Start:      start.UTC(),
		End:        end.UTC(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}
