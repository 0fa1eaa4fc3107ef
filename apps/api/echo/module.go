package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/modules"
	"github.com/trezcool/ratiba/core/user"
)

type moduleApi struct {
	svc      modules.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerModuleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc modules.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := moduleApi{svc: svc, usrSvc: usrSvc, validate: validate}

	mg := g.Group("/modules", jwt)
	mg.POST("", api.create)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.DELETE("/:id", api.destroy)
	mg.POST("/:id/grades", api.addGrade)
	mg.DELETE("/:id/grades/:gradeID", api.destroyGrade)
}

// Handlers

func (api *moduleApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data modules.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.Create(reqCtx, ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *moduleApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	mods, err := api.svc.Query(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if mods == nil {
		mods = []modules.ModuleDetail{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *moduleApi) retrieve(ctx echo.Context) error {
	mod, err := api.getOwnedModule(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	detail, err := api.svc.Detail(ctx.Request().Context(), mod.ID)
	if err != nil {
		return errors.Wrap(err, "loading module detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *moduleApi) destroy(ctx echo.Context) error {
	mod, err := api.getOwnedModule(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), mod.ID); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) addGrade(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	mod, err := api.getOwnedModule(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data modules.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.AddGrade(reqCtx, mod.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *moduleApi) destroyGrade(ctx echo.Context) error {
	mod, err := api.getOwnedModule(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	if err := api.svc.DeleteGrade(ctx.Request().Context(), mod.ID, ctx.Param("gradeID")); err != nil {
		if errors.Cause(err) == modules.ErrGradeNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedModule fetches the module and ensures it belongs to the context user
// (admins see everything). Foreign modules are indistinguishable from missing
// ones.
func (api *moduleApi) getOwnedModule(ctx echo.Context, id string) (modules.Module, error) {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return modules.Module{}, errors.Wrap(err, "getting context user")
	}

	mod, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == modules.ErrNotFound {
			return modules.Module{}, errHttpNotFound
		}
		return modules.Module{}, errors.Wrap(err, "finding module by ID")
	}
	if mod.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return modules.Module{}, errHttpNotFound
	}
	return mod, nil
}
