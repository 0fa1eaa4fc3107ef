package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/calendar"
	"github.com/trezcool/ratiba/core/friendship"
	"github.com/trezcool/ratiba/core/modules"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
)

// DB is a mutex-map database for tests and local hacking.
type DB struct {
	user         *userTable
	calendar     *calendarTable
	session      *sessionTable
	friendship   *friendshipTable
	notification *notificationTable
	modules      *moduleTable
}

type (
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	calendarTable struct {
		sync.RWMutex
		calendars map[string]*calendar.Calendar
		events    map[string]*calendar.Event
	}

	sessionTable struct {
		sync.RWMutex
		sessions     map[string]*session.StudySession
		participants map[string]*session.Participant
	}

	friendshipTable struct {
		sync.RWMutex
		requests map[string]*friendship.FriendRequest
		friends  map[string][]string
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}

	moduleTable struct {
		sync.RWMutex
		modules map[string]*modules.Module
		grades  map[string]*modules.Grade
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		calendar: &calendarTable{calendars: make(map[string]*calendar.Calendar), events: make(map[string]*calendar.Event)},
		session: &sessionTable{
			sessions:     make(map[string]*session.StudySession),
			participants: make(map[string]*session.Participant),
		},
		friendship:   &friendshipTable{requests: make(map[string]*friendship.FriendRequest), friends: make(map[string][]string)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
		modules:      &moduleTable{modules: make(map[string]*modules.Module), grades: make(map[string]*modules.Grade)},
	}
	return db, nil
}
