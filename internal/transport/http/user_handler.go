package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/timexa/timexa-backend/internal/service"
	"github.com/timexa/timexa-backend/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	group := e.Group("/api/users", RequireAuth(auth), RequireAdmin())
	group.GET("/all", handler.listUsers)
}

func (h *UserHandler) listUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list users"))
	}

	out := make([]util.Envelope, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"users": out,
		"meta": util.Envelope{
			"limit":  limit,
			"offset": offset,
			"count":  len(out),
		},
	})
}
