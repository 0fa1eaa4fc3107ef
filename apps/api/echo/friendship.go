package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/friendship"
	"github.com/trezcool/ratiba/core/user"
)

type friendshipApi struct {
	svc    friendship.Service
	usrSvc user.Service
}

func registerFriendshipAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc friendship.Service,
	usrSvc user.Service,
) {
	api := friendshipApi{svc: svc, usrSvc: usrSvc}

	fg := g.Group("/friends", jwt)
	fg.GET("", api.query)
	fg.GET("/suggestions", api.suggestions)
	fg.POST("/requests", api.sendRequest)
	fg.GET("/requests", api.pendingRequests)
	fg.POST("/requests/:id/accept", api.accept)
	fg.POST("/requests/:id/reject", api.reject)
}

// Handlers

func (api *friendshipApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ids, err := api.svc.FriendIDs(reqCtx, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying friends")
	}

	friends := make([]user.User, 0, len(ids))
	for _, id := range ids {
		usr, err := api.usrSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				continue // deleted account
			}
			return errors.Wrap(err, "finding friend by ID")
		}
		friends = append(friends, usr)
	}
	return ctx.JSON(http.StatusOK, friends)
}

// suggestions lists the users the context user could befriend: everyone but
// themselves, their friends and anyone with a request either way.
func (api *friendshipApi) suggestions(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	excluded, err := api.svc.ExcludedUserIDs(reqCtx, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying excluded user IDs")
	}

	active := true
	users, err := api.usrSvc.Query(reqCtx, &user.QueryFilter{IsActive: &active})
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	suggestions := make([]user.User, 0, len(users))
	for _, usr := range users {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		suggestions = append(suggestions, usr)
	}
	return ctx.JSON(http.StatusOK, suggestions)
}

func (api *friendshipApi) sendRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data FriendRequestRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FriendRequestRequest")
	}
	if _, err := api.usrSvc.GetByID(reqCtx, data.ToUserID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	req, err := api.svc.SendRequest(reqCtx, ctxUsr, data.ToUserID)
	if err != nil {
		return errors.Wrap(err, "sending friend request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *friendshipApi) pendingRequests(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqs, err := api.svc.PendingRequests(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying pending requests")
	}
	if reqs == nil {
		reqs = []friendship.FriendRequest{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *friendshipApi) accept(ctx echo.Context) error {
	return api.respond(ctx, true)
}

func (api *friendshipApi) reject(ctx echo.Context) error {
	return api.respond(ctx, false)
}

func (api *friendshipApi) respond(ctx echo.Context, accept bool) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.svc.Respond(ctx.Request().Context(), ctx.Param("id"), ctxUsr, accept)
	if err != nil {
		switch errors.Cause(err) {
		case friendship.ErrNotFound:
			return errHttpNotFound
		case friendship.ErrNotRecipient:
			return errHttpForbidden
		}
		return errors.Wrap(err, "responding to friend request")
	}
	return ctx.JSON(http.StatusOK, req)
}

type FriendRequestRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
}
