package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/calendar"
	testutil "github.com/trezcool/ratiba/tests"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:evt-1
DTSTART:20310303T100000Z
DTEND:20310303T120000Z
SUMMARY:Linear Algebra
RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=10
END:VEVENT
BEGIN:VEVENT
UID:evt-2
DTSTART:20310304T140000Z
SUMMARY:Office hours
END:VEVENT
END:VCALENDAR
`

func Test_calendarApi_crud(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner1", "owner@test.cd", "", nil, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other1", "other@test.cd", "", nil, true)
	ownerToken := getToken(t, owner)
	otherToken := getToken(t, other)

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/calendars", ownerToken,
		marchallObj(t, map[string]string{"name": "School"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cal calendar.Calendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cal))
	assert.Equal(t, owner.ID, cal.UserID)

	// list only shows own calendars
	req, rec = newAuthRequest(http.MethodGet, "/v1/calendars", otherToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// foreign calendars look missing
	req, rec = newAuthRequest(http.MethodGet, "/v1/calendars/"+cal.ID, otherToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)

	// delete cascades to events
	evt := testutil.CreateEvent(t, calRepo, cal.ID, "Biology",
		time.Date(2031, 3, 3, 9, 0, 0, 0, time.UTC), time.Date(2031, 3, 3, 10, 0, 0, 0, time.UTC))

	req, rec = newAuthRequest(http.MethodDelete, "/v1/calendars/"+cal.ID, ownerToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/events/"+evt.ID, ownerToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_calendarApi_events(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner1", "owner@test.cd", "", nil, true)
	token := getToken(t, owner)
	cal := testutil.CreateCalendar(t, calRepo, owner.ID, "School")

	// create with a weekly recurrence
	req, rec := newAuthRequest(http.MethodPost, "/v1/events", token,
		marchallObj(t, map[string]interface{}{
			"calendar_id": cal.ID,
			"title":       "Algebra",
			"start":       "2031-03-03T10:00:00Z",
			"end":         "2031-03-03T12:00:00Z",
			"rrule":       "FREQ=WEEKLY;BYDAY=MO;COUNT=10",
		}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var evt calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evt))
	assert.Equal(t, calendar.EventTypeEvent, evt.Type)

	// non-weekly recurrences are rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/events", token,
		marchallObj(t, map[string]interface{}{
			"calendar_id": cal.ID,
			"title":       "Daily drill",
			"start":       "2031-03-03T10:00:00Z",
			"rrule":       "FREQ=DAILY;COUNT=10",
		}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// query window is [from, to)
	req, rec = newAuthRequest(http.MethodGet, "/v1/events?from=2031-03-03T00:00:00Z&to=2031-03-04T00:00:00Z", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var evts []calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evts))
	require.Len(t, evts, 1)

	// drag: move start (and end)
	req, rec = newAuthRequest(http.MethodPut, "/v1/events/"+evt.ID, token,
		marchallObj(t, map[string]interface{}{
			"start": "2031-03-04T10:00:00Z",
			"end":   "2031-03-04T12:00:00Z",
		}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evt))
	assert.Equal(t, time.Date(2031, 3, 4, 10, 0, 0, 0, time.UTC), evt.Start)

	// resize below start is rejected
	req, rec = newAuthRequest(http.MethodPut, "/v1/events/"+evt.ID, token,
		marchallObj(t, map[string]interface{}{"end": "2031-03-04T09:00:00Z"}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_calendarApi_importICS(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner1", "owner@test.cd", "", nil, true)
	token := getToken(t, owner)

	newUpload := func(name, content string) (*http.Request, *httptest.ResponseRecorder) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		_ = w.WriteField("name", name)
		fw, err := w.CreateFormFile("file", "schedule.ics")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/calendars/import", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return req, httptest.NewRecorder()
	}

	req, rec := newUpload("Imported", sampleICS)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Calendar calendar.Calendar `json:"calendar"`
		Events   []calendar.Event  `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Imported", res.Calendar.Name)
	require.Len(t, res.Events, 2)

	// garbage leaves nothing behind
	req, rec = newUpload("Garbage", "this is not a calendar")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/calendars", token)
	app.ServeHTTP(rec, req)
	var cals []calendar.Calendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cals))
	assert.Len(t, cals, 1)
}
