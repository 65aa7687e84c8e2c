package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceSession is a single check-in/check-out pair inside a day's log.
// CheckOut is nil while the session is still open.
type AttendanceSession struct {
	ID             int64      `db:"id" json:"-"`
	LogID          int64      `db:"log_id" json:"-"`
	CheckIn        time.Time  `db:"check_in" json:"check_in"`
	CheckOut       *time.Time `db:"check_out" json:"check_out"`
	SessionMinutes int        `db:"session_minutes" json:"session_minutes"`
}

func (s *AttendanceSession) Open() bool {
	return s.CheckOut == nil
}

// AttendanceLog holds all sessions of one user on one calendar day.
// The (UserID, Date) pair is unique; Date carries no time component.
type AttendanceLog struct {
	ID                    int64     `db:"id" json:"id"`
	UserID                uuid.UUID `db:"user_id" json:"user_id"`
	Date                  time.Time `db:"log_date" json:"date"`
	TotalMinutes          int       `db:"total_minutes" json:"total_minutes"`
	EntryExitTotalMinutes int       `db:"entry_exit_total_minutes" json:"entry_exit_total_minutes"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`

	Sessions []AttendanceSession `db:"-" json:"sessions"`
}

func (l *AttendanceLog) LastSession() *AttendanceSession {
	if len(l.Sessions) == 0 {
		return nil
	}
	return &l.Sessions[len(l.Sessions)-1]
}

func (l *AttendanceLog) FirstSession() *AttendanceSession {
	if len(l.Sessions) == 0 {
		return nil
	}
	return &l.Sessions[0]
}

func (l *AttendanceLog) HasOpenSession() bool {
	last := l.LastSession()
	return last != nil && last.Open()
}

// AttendanceSortField names a column the log listing may be ordered by.
type AttendanceSortField string

const (
	AttendanceSortDate         AttendanceSortField = "log_date"
	AttendanceSortTotalMinutes AttendanceSortField = "total_minutes"
)
