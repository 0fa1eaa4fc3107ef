package remindersvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
)

type fakeMailService struct {
	sync.Mutex
	sent []*core.EmailMessage
}

func (svc *fakeMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.Lock()
	defer svc.Unlock()
	svc.sent = append(svc.sent, messages...)
}

func TestRemindUpcomingSessions(t *testing.T) {
	ctx := context.Background()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	usrRepo := inmemdb.NewUserRepository(db)
	sessRepo := inmemdb.NewSessionRepository(db)
	notifRepo := inmemdb.NewNotificationRepository(db)

	mailSvc := new(fakeMailService)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, &core.Config{AppName: "Ratiba Test"})
	notifSvc := notification.NewService(nil, notifRepo)

	host, err := usrSvc.Create(ctx, user.NewUser{Name: "Host", Username: "host", Email: "host@test.cd", Password: "LePassword007"})
	require.NoError(t, err)
	buddy, err := usrSvc.Create(ctx, user.NewUser{Name: "Buddy", Username: "buddy", Email: "buddy@test.cd", Password: "LePassword007"})
	require.NoError(t, err)

	now := time.Date(2021, time.March, 1, 15, 0, 0, 0, time.UTC) // Mon
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })

	mkSession := func(start time.Time) session.StudySession {
		sess, err := sessRepo.CreateSession(ctx, session.StudySession{
			ID:         uuid.New().String(),
			HostID:     host.ID,
			CalendarID: uuid.New().String(),
			Title:      "Algebra drill",
			Date:       start.Truncate(24 * time.Hour),
			Start:      start,
			End:        start.Add(time.Hour),
			CreatedAt:  now,
		})
		require.NoError(t, err)
		return sess
	}
	tomorrow := mkSession(time.Date(2021, time.March, 2, 10, 0, 0, 0, time.UTC))
	mkSession(time.Date(2021, time.March, 5, 10, 0, 0, 0, time.UTC)) // too far out

	_, err = sessRepo.AddParticipant(ctx, session.Participant{
		ID: uuid.New().String(), SessionID: tomorrow.ID, UserID: buddy.ID, JoinedAt: now,
	})
	require.NoError(t, err)

	conf := &core.Config{Scheduler: core.SchedulerConfig{FetchTimeout: 5 * time.Second}}
	svc := NewService(sessRepo, usrSvc, notifSvc, mailSvc, nil, conf)
	require.NoError(t, svc.RemindUpcomingSessions(ctx))

	// host and participant each get one in-app notification and one email
	for _, usr := range []user.User{host, buddy} {
		notifs, err := notifSvc.Query(ctx, usr.ID, true)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Contains(t, notifs[0].Message, "Algebra drill")
	}
	require.Len(t, mailSvc.sent, 2)
	assert.Equal(t, "Study session reminder", mailSvc.sent[0].Subject)

	// the Friday session stays quiet
	for _, msg := range mailSvc.sent {
		require.Len(t, msg.To, 1)
	}
}
