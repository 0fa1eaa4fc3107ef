package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/calendar"
	"github.com/trezcool/ratiba/core/scheduler"
	"github.com/trezcool/ratiba/core/session"
	"github.com/trezcool/ratiba/core/user"
)

var errNoAvailableSlot = echo.NewHTTPError(http.StatusConflict, "no available slot in the coming week")

type sessionApi struct {
	svc      session.Service
	calSvc   calendar.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerSessionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc session.Service,
	calSvc calendar.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := sessionApi{
		svc:      svc,
		calSvc:   calSvc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.POST("/auto-schedule", api.autoSchedule)
	sg.GET("/:id", api.retrieve)
	sg.DELETE("/:id", api.destroy)
	sg.POST("/:id/join", api.join)
	sg.GET("/:id/participants", api.participants)
}

// Handlers

func (api *sessionApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data session.NewStudySession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudySession")
	}
	if err := data.Validate(reqCtx, api.validate, api.calSvc); err != nil {
		return err
	}

	sess, err := api.svc.Create(reqCtx, ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating study session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *sessionApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var rng DateRange
	if err := rng.Bind(ctx); err != nil {
		return err
	}

	sessions, err := api.svc.Query(ctx.Request().Context(), ctxUsr.ID, rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "querying study sessions")
	}
	if sessions == nil {
		sessions = []session.StudySession{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

// autoSchedule asks the placement engine for the best free slot in the coming
// week and materializes it on the given calendar.
func (api *sessionApi) autoSchedule(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data AutoScheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AutoScheduleRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	cal, err := api.calSvc.GetByID(reqCtx, data.CalendarID)
	if err != nil || cal.UserID != ctxUsr.ID {
		return core.NewValidationError(calendar.ErrNotFound, core.FieldError{Field: "calendar_id", Error: calendar.ErrNotFound.Error()})
	}

	sess, err := api.svc.AutoSchedule(reqCtx, ctxUsr.ID, cal.ID)
	if err != nil {
		if errors.Cause(err) == scheduler.ErrNoAvailableSlot {
			return errNoAvailableSlot
		}
		return errors.Wrap(err, "auto-scheduling study session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, err := api.getSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sess, err := api.getSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	// only the host (or an admin) can cancel a session
	if sess.HostID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "deleting study session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) join(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sess, err := api.getSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	p, err := api.svc.Join(reqCtx, sess.ID, ctxUsr)
	if err != nil {
		if errors.Cause(err) == session.ErrAlreadyJoined {
			return echo.NewHTTPError(http.StatusConflict, session.ErrAlreadyJoined.Error())
		}
		return errors.Wrap(err, "joining study session")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *sessionApi) participants(ctx echo.Context) error {
	sess, err := api.getSession(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	ps, err := api.svc.Participants(ctx.Request().Context(), sess.ID)
	if err != nil {
		return errors.Wrap(err, "querying participants")
	}
	if ps == nil {
		ps = []session.Participant{}
	}
	return ctx.JSON(http.StatusOK, ps)
}

func (api *sessionApi) getSession(ctx echo.Context, id string) (session.StudySession, error) {
	sess, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return session.StudySession{}, errHttpNotFound
		}
		return session.StudySession{}, errors.Wrap(err, "finding study session by ID")
	}
	return sess, nil
}

type AutoScheduleRequest struct {
	CalendarID string `json:"calendar_id" validate:"required"`
}
