package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
	"github.com/trezcool/ratiba/core/friendship"
	"github.com/trezcool/ratiba/core/modules"
	"github.com/trezcool/ratiba/core/notification"
	"github.com/trezcool/ratiba/core/scheduler"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
	emailsvc "github.com/trezcool/ratiba/services/email"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
)

var (
	conf *core.Config

	usrRepo   user.Repository
	calRepo   calendar.Repository
	sessRepo  session.Repository
	fshipRepo friendship.Repository
	notifRepo notification.Repository
	modRepo   modules.Repository

	usrSvc   user.Service
	calSvc   calendar.Service
	sessSvc  session.Service
	fshipSvc friendship.Service
	notifSvc notification.Service
	modSvc   modules.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

// setup rebuilds the whole app against a fresh in-memory DB.
func setup(t *testing.T) Server {
	t.Helper()

	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := testLogger{}
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)
	user.LoadCommonPasswords(conf, logger)
	core.ParseEmailTemplates(conf, logger)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	calRepo = inmemdb.NewCalendarRepository(db)
	sessRepo = inmemdb.NewSessionRepository(db)
	fshipRepo = inmemdb.NewFriendshipRepository(db)
	notifRepo = inmemdb.NewNotificationRepository(db)
	modRepo = inmemdb.NewModuleRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewServiceMock(usrRepo, mailSvc, conf)
	notifSvc = notification.NewService(nil, notifRepo)
	calSvc = calendar.NewService(nil, calRepo)
	fshipSvc = friendship.NewService(nil, fshipRepo, notifSvc)
	modSvc = modules.NewService(nil, modRepo)

	// the placement engine reads sessions through a query-only service
	sched := scheduler.New(
		conf.Scheduler,
		calendar.NewSchedulerSource(calSvc),
		session.NewSchedulerSource(session.NewService(nil, sessRepo, notifSvc, nil)),
	)
	sessSvc = session.NewService(nil, sessRepo, notifSvc, sched)

	return NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		CalendarSvc:    calSvc,
		SessionSvc:     sessSvc,
		FriendshipSvc:  fshipSvc,
		NotifSvc:       notifSvc,
		ModuleSvc:      modSvc,
		DisableReqLogs: true,
	})
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger keeps test output quiet; fatals still stop the run.
type testLogger struct{}

func (testLogger) Enable(bool)                        {}
func (testLogger) Debug(string, ...interface{})       {}
func (testLogger) Info(string, ...interface{})        {}
func (testLogger) Warn(string, ...interface{})        {}
func (testLogger) Error(msg string, _ ...interface{}) { log.Println("ERROR:", msg) }
func (testLogger) Fatal(msg string, _ ...interface{}) { log.Fatalln("FATAL:", msg) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
