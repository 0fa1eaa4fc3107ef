package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
	"github.com/trezcool/ratiba/core/user"
)

type calendarApi struct {
	svc      calendar.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerCalendarAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc calendar.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := calendarApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	cg := g.Group("/calendars", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.POST("/import", api.importICS)
	cg.GET("/:id", api.retrieve)
	cg.DELETE("/:id", api.destroy)

	eg := g.Group("/events", jwt)
	eg.POST("", api.createEvent)
	eg.GET("", api.queryEvents)
	eg.PUT("/:id", api.updateEvent)
	eg.DELETE("/:id", api.destroyEvent)
}

// Handlers

func (api *calendarApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data calendar.NewCalendar
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCalendar")
	}
	data.UserID = ctxUsr.ID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cal, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating calendar")
	}
	return ctx.JSON(http.StatusCreated, cal)
}

func (api *calendarApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cals, err := api.svc.Query(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying calendars")
	}
	if cals == nil {
		cals = []calendar.Calendar{}
	}
	return ctx.JSON(http.StatusOK, cals)
}

// importICS creates a calendar from an uploaded ICS file. The multipart form
// holds the file under "file" and the calendar name under "name".
func (api *calendarApi) importICS(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	name := core.CleanString(ctx.FormValue("name"))
	if name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "an ICS file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	cal, evts, err := api.svc.ImportICS(reqCtx, ctxUsr.ID, name, f)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "could not parse ICS file"})
	}

	return ctx.JSON(http.StatusCreated, ImportICSResponse{Calendar: cal, Events: evts})
}

func (api *calendarApi) retrieve(ctx echo.Context) error {
	cal, err := api.getOwnedCalendar(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cal)
}

func (api *calendarApi) destroy(ctx echo.Context) error {
	cal, err := api.getOwnedCalendar(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), cal.ID); err != nil {
		return errors.Wrap(err, "deleting calendar")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *calendarApi) createEvent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data calendar.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}
	if _, err := api.getOwnedCalendar(ctx, data.CalendarID); err != nil {
		return err
	}

	evt, err := api.svc.CreateEvent(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *calendarApi) queryEvents(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var rng DateRange
	if err := rng.Bind(ctx); err != nil {
		return err
	}

	evts, err := api.svc.QueryEvents(ctx.Request().Context(), ctxUsr.ID, rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if evts == nil {
		evts = []calendar.Event{}
	}
	return ctx.JSON(http.StatusOK, evts)
}

func (api *calendarApi) updateEvent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	evt, err := api.getOwnedEvent(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data calendar.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(evt, api.validate); err != nil {
		return err
	}

	evt, err = api.svc.UpdateEvent(reqCtx, evt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *calendarApi) destroyEvent(ctx echo.Context) error {
	evt, err := api.getOwnedEvent(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.DeleteEvents(ctx.Request().Context(), evt.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedCalendar fetches the calendar and ensures it belongs to the context
// user (admins see everything). Returns errHttpNotFound otherwise, so
// foreign calendars are indistinguishable from missing ones.
func (api *calendarApi) getOwnedCalendar(ctx echo.Context, id string) (calendar.Calendar, error) {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return calendar.Calendar{}, errors.Wrap(err, "getting context user")
	}

	cal, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == calendar.ErrNotFound {
			return calendar.Calendar{}, errHttpNotFound
		}
		return calendar.Calendar{}, errors.Wrap(err, "finding calendar by ID")
	}
	if cal.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return calendar.Calendar{}, errHttpNotFound
	}
	return cal, nil
}

func (api *calendarApi) getOwnedEvent(ctx echo.Context, id string) (calendar.Event, error) {
	evt, err := api.svc.GetEventByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == calendar.ErrEventNotFound {
			return calendar.Event{}, errHttpNotFound
		}
		return calendar.Event{}, errors.Wrap(err, "finding event by ID")
	}
	if _, err := api.getOwnedCalendar(ctx, evt.CalendarID); err != nil {
		return calendar.Event{}, err
	}
	return evt, nil
}

type ImportICSResponse struct {
	Calendar calendar.Calendar `json:"calendar"`
	Events   []calendar.Event  `json:"events"`
}
