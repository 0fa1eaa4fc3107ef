package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/session"
	testutil "github.com/trezcool/ratiba/tests"
)

func Test_sessionApi_createAndJoin(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	host := testutil.CreateUser(t, usrRepo, "Host", "host01", "host@test.cd", "", nil, true)
	buddy := testutil.CreateUser(t, usrRepo, "Buddy", "buddy1", "buddy@test.cd", "", nil, true)
	hostToken := getToken(t, host)
	buddyToken := getToken(t, buddy)
	cal := testutil.CreateCalendar(t, calRepo, host.ID, "School")

	// past sessions are rejected
	req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", hostToken,
		marchallObj(t, map[string]interface{}{
			"calendar_id": cal.ID,
			"title":       "Yesterday's revision",
			"start":       "2020-01-01T10:00:00Z",
			"end":         "2020-01-01T12:00:00Z",
		}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"start": "study session date cannot be in the past"}),
	}, rec)

	// create
	req, rec = newAuthRequest(http.MethodPost, "/v1/sessions", hostToken,
		marchallObj(t, map[string]interface{}{
			"calendar_id": cal.ID,
			"title":       "Algebra drill",
			"start":       "2031-03-03T10:00:00Z",
			"end":         "2031-03-03T12:00:00Z",
			"is_recurring": true,
			"occurrences": 4,
		}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess session.StudySession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, host.ID, sess.HostID)
	assert.Equal(t, time.Date(2031, 3, 3, 0, 0, 0, 0, time.UTC), sess.Date)

	// join notifies the host
	req, rec = newAuthRequest(http.MethodPost, "/v1/sessions/"+sess.ID+"/join", buddyToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	notifs, err := notifSvc.Query(ctx, host.ID, true)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "buddy1 joined your study session 'Algebra drill'", notifs[0].Message)

	// joining twice conflicts
	req, rec = newAuthRequest(http.MethodPost, "/v1/sessions/"+sess.ID+"/join", buddyToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// participants
	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/"+sess.ID+"/participants", hostToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var ps []session.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Len(t, ps, 1)
	assert.Equal(t, buddy.ID, ps[0].UserID)

	// the session shows up for both host and participant
	for _, token := range []string{hostToken, buddyToken} {
		req, rec = newAuthRequest(http.MethodGet, "/v1/sessions?from=2031-03-01T00:00:00Z&to=2031-03-08T00:00:00Z", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var sessions []session.StudySession
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
		require.Len(t, sessions, 1)
	}

	// only the host can cancel
	req, rec = newAuthRequest(http.MethodDelete, "/v1/sessions/"+sess.ID, buddyToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/sessions/"+sess.ID, hostToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_sessionApi_autoSchedule(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Solo", "solo01", "solo@test.cd", "", nil, true)
	token := getToken(t, usr)
	cal := testutil.CreateCalendar(t, calRepo, usr.ID, "School")

	// a calendar the user does not own is rejected
	other := testutil.CreateUser(t, usrRepo, "Other", "other1", "other@test.cd", "", nil, true)
	foreignCal := testutil.CreateCalendar(t, calRepo, other.ID, "Foreign")
	req, rec := newAuthRequest(http.MethodPost, "/v1/sessions/auto-schedule", token,
		marchallObj(t, map[string]string{"calendar_id": foreignCal.ID}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// with a free week the engine picks the default early-afternoon slot
	req, rec = newAuthRequest(http.MethodPost, "/v1/sessions/auto-schedule", token,
		marchallObj(t, map[string]string{"calendar_id": cal.ID}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess session.StudySession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "Study session", sess.Title)
	assert.Equal(t, usr.ID, sess.HostID)
	assert.Equal(t, cal.ID, sess.CalendarID)
	assert.Equal(t, conf.Scheduler.LongSessionDuration, sess.End.Sub(sess.Start))
	assert.True(t, sess.Start.After(time.Now().UTC()))
}
