package remindersvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
)

// runSpec fires the daily reminder sweep in the evening.
var runSpec = "0 18 * * *"

var nowFunc = time.Now // mockable

// Service reminds hosts and participants of their next-day study sessions.
type Service struct {
	cron     *cron.Cron
	sessRepo session.Repository
	usrSvc   user.Service
	notifSvc notification.Service
	mailSvc  core.EmailService
	logger   core.Logger
	timeout  time.Duration
}

func NewService(
	sessRepo session.Repository,
	usrSvc user.Service,
	notifSvc notification.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		cron:     cron.New(),
		sessRepo: sessRepo,
		usrSvc:   usrSvc,
		notifSvc: notifSvc,
		mailSvc:  mailSvc,
		logger:   logger,
		timeout:  conf.Scheduler.FetchTimeout,
	}
}

// Start schedules the daily job and starts the cron loop in its own goroutine.
func (svc *Service) Start() error {
	if _, err := svc.cron.AddFunc(runSpec, svc.run); err != nil {
		return err
	}
	svc.cron.Start()
	return nil
}

func (svc *Service) Stop() context.Context {
	return svc.cron.Stop()
}

func (svc *Service) run() {
	ctx, cancel := context.WithTimeout(context.Background(), svc.timeout)
	defer cancel()

	if err := svc.RemindUpcomingSessions(ctx); err != nil {
		svc.logger.Error(fmt.Sprintf("remindersvc: %v", err), err)
	}
}

// RemindUpcomingSessions notifies the host and every participant of each
// session starting tomorrow, in-app and by email.
func (svc *Service) RemindUpcomingSessions(ctx context.Context) error {
	now := nowFunc().UTC()
	from := now.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	sessions, err := svc.sessRepo.QuerySessionsStartingBetween(ctx, from, to)
	if err != nil {
		return err
	}

	for _, sess := range sessions {
		participants, err := svc.sessRepo.QueryParticipants(ctx, sess.ID)
		if err != nil {
			return err
		}

		userIDs := make([]string, 0, len(participants)+1)
		userIDs = append(userIDs, sess.HostID)
		for _, p := range participants {
			userIDs = append(userIDs, p.UserID)
		}

		msg := fmt.Sprintf("Reminder: your study session '%s' starts %s", sess.Title, sess.Start.Format("Mon, 02 Jan 2006 at 15:04 MST"))
		for _, uid := range userIDs {
			if _, err := svc.notifSvc.Notify(ctx, uid, msg); err != nil {
				return err
			}

			usr, err := svc.usrSvc.GetByID(ctx, uid)
			if err != nil {
				if err == user.ErrNotFound {
					continue
				}
				return err
			}
			svc.mailSvc.SendMessages(&core.EmailMessage{
				To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
				Subject:      "Study session reminder",
				TemplateName: "session-reminder",
				TemplateData: struct {
					User    user.User
					Session session.StudySession
				}{usr, sess},
			})
		}
	}
	return nil
}
