package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/timexa/timexa-backend/internal/domain"
)

func newAttendanceContext(t *testing.T, caller *domain.User, pathUserID string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/check-in/"+pathUserID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(pathUserID)
	if caller != nil {
		c.Set(contextUserKey, caller)
	}
	return c
}

func TestResolveUserIDAllowsSelf(t *testing.T) {
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	handler := &AttendanceHandler{}

	c := newAttendanceContext(t, caller, caller.ID.String())
	userID, err := handler.resolveUserID(c)
	if err != nil {
		t.Fatalf("resolveUserID: %v", err)
	}
	if userID != caller.ID {
		t.Fatalf("expected caller's own id, got %s", userID)
	}
}

func TestResolveUserIDForbidsOtherUsers(t *testing.T) {
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	handler := &AttendanceHandler{}

	c := newAttendanceContext(t, caller, uuid.New().String())
	_, err := handler.resolveUserID(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user's id, got %v", err)
	}
}

func TestResolveUserIDAllowsAdminForOthers(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	handler := &AttendanceHandler{}

	target := uuid.New()
	c := newAttendanceContext(t, admin, target.String())
	userID, err := handler.resolveUserID(c)
	if err != nil {
		t.Fatalf("resolveUserID: %v", err)
	}
	if userID != target {
		t.Fatalf("expected target id, got %s", userID)
	}
}

func TestResolveUserIDRejectsBadUUID(t *testing.T) {
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	handler := &AttendanceHandler{}

	c := newAttendanceContext(t, caller, "not-a-uuid")
	_, err := handler.resolveUserID(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %v", err)
	}
}
