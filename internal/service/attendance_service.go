package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/repository/ports"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrAlreadyCheckedOut = errors.New("already checked out")
	ErrNoCheckIn         = errors.New("cannot check out before check-in")
	ErrSessionTooLong    = errors.New("session exceeds the maximum allowed length")
	ErrInvalidSortField  = errors.New("unsupported sort field")
)

type AttendanceService struct {
	logs              ports.AttendanceLogRepository
	maxSessionMinutes int
	now               func() time.Time
}

type CheckInResult struct {
	Log     *domain.AttendanceLog
	Created bool
}

type AttendanceListResult struct {
	Logs []domain.AttendanceLog
	Meta domain.PageMeta
}

func NewAttendanceService(logs ports.AttendanceLogRepository, maxSessionMinutes int) *AttendanceService {
	if maxSessionMinutes <= 0 {
		maxSessionMinutes = 24 * 60
	}
	return &AttendanceService{
		logs:              logs,
		maxSessionMinutes: maxSessionMinutes,
		now:               time.Now,
	}
}

// CheckIn opens a new session for today. The first check-in of the day
// creates the log; later ones append a session, provided the previous one
// was closed.
func (s *AttendanceService) CheckIn(ctx context.Context, userID uuid.UUID) (*CheckInResult, error) {
	now := s.now()
	today := normalizeDate(now)

	log, err := s.logs.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		created, err := s.logs.CreateWithOpenSession(ctx, userID, today, now)
		if err != nil {
			// A concurrent first check-in hit the (user, date) unique
			// index; the other call already opened a session.
			if isUniqueViolation(err) {
				return nil, ErrAlreadyCheckedIn
			}
			return nil, err
		}
		return &CheckInResult{Log: created, Created: true}, nil
	}

	if log.HasOpenSession() {
		return nil, ErrAlreadyCheckedIn
	}

	updated, err := s.logs.AppendOpenSession(ctx, log.ID, now)
	if err != nil {
		if isNotFound(err) || isUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return &CheckInResult{Log: updated, Created: false}, nil
}

// CheckOut closes today's open session and updates the duration totals.
// Durations are whole minutes, floored.
func (s *AttendanceService) CheckOut(ctx context.Context, userID uuid.UUID) (*domain.AttendanceLog, error) {
	now := s.now()
	today := normalizeDate(now)

	log, err := s.logs.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoCheckIn
		}
		return nil, err
	}

	last := log.LastSession()
	if last == nil || !last.Open() {
		return nil, ErrAlreadyCheckedOut
	}

	sessionMinutes := wholeMinutes(now.Sub(last.CheckIn))
	if sessionMinutes > s.maxSessionMinutes {
		return nil, ErrSessionTooLong
	}

	first := log.FirstSession()
	entryExitMinutes := wholeMinutes(now.Sub(first.CheckIn))

	updated, err := s.logs.CloseSession(ctx, log.ID, last.ID, now, sessionMinutes, entryExitMinutes)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, err
	}
	return updated, nil
}

func (s *AttendanceService) ListLogs(ctx context.Context, userID uuid.UUID, page, pageSize int, sortBy, sortOrder string) (*AttendanceListResult, error) {
	field, err := parseAttendanceSortField(sortBy)
	if err != nil {
		return nil, err
	}
	ascending := sortOrder == "asc"

	page, pageSize = normalizeLogPagination(page, pageSize)
	offset := (page - 1) * pageSize

	logs, err := s.logs.ListByUser(ctx, userID, field, ascending, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.logs.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AttendanceListResult{
		Logs: logs,
		Meta: domain.NewPageMeta(page, pageSize, total),
	}, nil
}

func parseAttendanceSortField(sortBy string) (domain.AttendanceSortField, error) {
	switch sortBy {
	case "", "date":
		return domain.AttendanceSortDate, nil
	case "totalMinutes", "total_minutes":
		return domain.AttendanceSortTotalMinutes, nil
	default:
		return "", ErrInvalidSortField
	}
}

func normalizeLogPagination(page, pageSize int) (int, int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// normalizeDate strips the time component in local time, matching how the
// store buckets logs by calendar day.
func normalizeDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
