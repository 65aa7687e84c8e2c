package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/timexa/timexa-backend/internal/domain"
)

// AttendanceLogRepository persists per-user per-day attendance logs.
//
// AppendOpenSession and CloseSession are conditional store operations: they
// mutate only when the log is in the expected state (no open session for
// append, the given session still open for close) and report sql.ErrNoRows
// otherwise. This keeps concurrent check-in/check-out calls from both
// succeeding on the same state.
type AttendanceLogRepository interface {
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.AttendanceLog, error)
	CreateWithOpenSession(ctx context.Context, userID uuid.UUID, date, checkIn time.Time) (*domain.AttendanceLog, error)
	AppendOpenSession(ctx context.Context, logID int64, checkIn time.Time) (*domain.AttendanceLog, error)
	CloseSession(ctx context.Context, logID, sessionID int64, checkOut time.Time, sessionMinutes, entryExitMinutes int) (*domain.AttendanceLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, sortBy domain.AttendanceSortField, ascending bool, limit, offset int) ([]domain.AttendanceLog, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
