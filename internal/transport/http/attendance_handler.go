package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/metrics"
	"github.com/timexa/timexa-backend/internal/service"
	"github.com/timexa/timexa-backend/internal/util"
)

type AttendanceHandler struct {
	attendance *service.AttendanceService
	collector  *metrics.Collector
}

func RegisterAttendance(e *echo.Echo, auth *service.AuthService, attendance *service.AttendanceService, collector *metrics.Collector) {
	handler := &AttendanceHandler{attendance: attendance, collector: collector}

	group := e.Group("/api/attendance", RequireAuth(auth))
	group.POST("/check-in/:userId", handler.checkIn)
	group.POST("/check-out/:userId", handler.checkOut)
	group.GET("/logs/:userId", handler.listLogs)
}

// resolveUserID parses the path parameter and enforces that non-admin
// callers only touch their own records.
func (h *AttendanceHandler) resolveUserID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Param("userId")))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "userId must be a valid UUID")
	}

	caller, ok := CurrentUser(c)
	if !ok || caller == nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if caller.ID != userID && !caller.IsAdmin() {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "cannot access another user's attendance")
	}
	return userID, nil
}

func (h *AttendanceHandler) checkIn(c echo.Context) error {
	userID, err := h.resolveUserID(c)
	if err != nil {
		return err
	}

	result, err := h.attendance.CheckIn(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyCheckedIn) {
			return c.JSON(http.StatusConflict, util.Error("already checked in"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not check in"))
	}

	h.collector.RecordCheckIn()
	status := http.StatusOK
	message := "Checked in"
	if result.Created {
		status = http.StatusCreated
		message = "First check-in of the day"
	}
	return c.JSON(status, util.Envelope{
		"log":     logResponse(result.Log),
		"message": message,
	})
}

func (h *AttendanceHandler) checkOut(c echo.Context) error {
	userID, err := h.resolveUserID(c)
	if err != nil {
		return err
	}

	log, err := h.attendance.CheckOut(c.Request().Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoCheckIn):
			return c.JSON(http.StatusConflict, util.Error("cannot check out before check-in"))
		case errors.Is(err, service.ErrAlreadyCheckedOut):
			return c.JSON(http.StatusConflict, util.Error("already checked out"))
		case errors.Is(err, service.ErrSessionTooLong):
			return c.JSON(http.StatusConflict, util.Error("session exceeds the maximum allowed length"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not check out"))
		}
	}

	h.collector.RecordCheckOut()
	return c.JSON(http.StatusOK, util.Envelope{
		"log":     logResponse(log),
		"message": "Checked out",
	})
}

func (h *AttendanceHandler) listLogs(c echo.Context) error {
	userID, err := h.resolveUserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))
	sortBy := c.QueryParam("sortBy")
	sortOrder := c.QueryParam("sortOrder")

	result, err := h.attendance.ListLogs(c.Request().Context(), userID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			return c.JSON(http.StatusBadRequest, util.Error("sortBy must be date or totalMinutes"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not list attendance logs"))
	}

	logs := make([]util.Envelope, 0, len(result.Logs))
	for i := range result.Logs {
		logs = append(logs, logResponse(&result.Logs[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"logs": logs,
		"meta": result.Meta,
	})
}

func logResponse(log *domain.AttendanceLog) util.Envelope {
	sessions := make([]util.Envelope, 0, len(log.Sessions))
	for i := range log.Sessions {
		s := &log.Sessions[i]
		item := util.Envelope{
			"check_in":        s.CheckIn.UTC().Format(time.RFC3339),
			"check_out":       nil,
			"session_minutes": s.SessionMinutes,
		}
		if s.CheckOut != nil {
			item["check_out"] = s.CheckOut.UTC().Format(time.RFC3339)
		}
		sessions = append(sessions, item)
	}

	return util.Envelope{
		"id":                       log.ID,
		"user_id":                  log.UserID,
		"date":                     log.Date.Format("2006-01-02"),
		"sessions":                 sessions,
		"total_minutes":            log.TotalMinutes,
		"entry_exit_total_minutes": log.EntryExitTotalMinutes,
	}
}
