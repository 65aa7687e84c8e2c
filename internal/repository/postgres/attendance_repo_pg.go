package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/timexa/timexa-backend/internal/domain"
)

type AttendanceLogRepository struct {
	db *sqlx.DB
}

func NewAttendanceLogRepo(db *sqlx.DB) *AttendanceLogRepository {
	return &AttendanceLogRepository{db: db}
}

const attendanceLogColumns = `id, user_id, log_date, total_minutes, entry_exit_total_minutes, created_at, updated_at`

func (r *AttendanceLogRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.AttendanceLog, error) {
	const query = `
        SELECT ` + attendanceLogColumns + `
        FROM attendance_log
        WHERE user_id = $1 AND log_date = $2
    `
	var log domain.AttendanceLog
	if err := r.db.GetContext(ctx, &log, query, userID, date); err != nil {
		return nil, err
	}
	if err := r.loadSessions(ctx, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *AttendanceLogRepository) CreateWithOpenSession(ctx context.Context, userID uuid.UUID, date, checkIn time.Time) (*domain.AttendanceLog, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const insertLog = `
        INSERT INTO attendance_log (user_id, log_date)
        VALUES ($1, $2)
        RETURNING ` + attendanceLogColumns + `
    `
	var log domain.AttendanceLog
	if err := tx.QueryRowxContext(ctx, insertLog, userID, date).StructScan(&log); err != nil {
		return nil, err
	}

	const insertSession = `
        INSERT INTO attendance_session (log_id, check_in)
        VALUES ($1, $2)
        RETURNING id, log_id, check_in, check_out, session_minutes
    `
	var session domain.AttendanceSession
	if err := tx.QueryRowxContext(ctx, insertSession, log.ID, checkIn).StructScan(&session); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Sessions = []domain.AttendanceSession{session}
	return &log, nil
}

// AppendOpenSession adds a fresh open session, but only when the log has no
// open session already; sql.ErrNoRows signals a lost race or a double
// check-in.
func (r *AttendanceLogRepository) AppendOpenSession(ctx context.Context, logID int64, checkIn time.Time) (*domain.AttendanceLog, error) {
	const query = `
        INSERT INTO attendance_session (log_id, check_in)
        SELECT $1, $2
        WHERE NOT EXISTS (
            SELECT 1 FROM attendance_session
            WHERE log_id = $1 AND check_out IS NULL
        )
        RETURNING id
    `
	var sessionID int64
	if err := r.db.QueryRowxContext(ctx, query, logID, checkIn).Scan(&sessionID); err != nil {
		return nil, err
	}
	return r.findByID(ctx, logID)
}

// CloseSession stamps the checkout on the given session and folds its
// duration into the log totals in one statement. The update matches nothing
// when the session was already closed, which surfaces as sql.ErrNoRows.
func (r *AttendanceLogRepository) CloseSession(ctx context.Context, logID, sessionID int64, checkOut time.Time, sessionMinutes, entryExitMinutes int) (*domain.AttendanceLog, error) {
	const query = `
        WITH closed AS (
            UPDATE attendance_session
            SET check_out = $3,
                session_minutes = $4
            WHERE id = $2 AND log_id = $1 AND check_out IS NULL
            RETURNING id
        )
        UPDATE attendance_log
        SET total_minutes = total_minutes + $4,
            entry_exit_total_minutes = $5,
            updated_at = NOW()
        WHERE id = $1 AND EXISTS (SELECT 1 FROM closed)
        RETURNING ` + attendanceLogColumns + `
    `
	var log domain.AttendanceLog
	row := r.db.QueryRowxContext(ctx, query, logID, sessionID, checkOut, sessionMinutes, entryExitMinutes)
	if err := row.StructScan(&log); err != nil {
		return nil, err
	}
	if err := r.loadSessions(ctx, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *AttendanceLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, sortBy domain.AttendanceSortField, ascending bool, limit, offset int) ([]domain.AttendanceLog, error) {
	column := "log_date"
	if sortBy == domain.AttendanceSortTotalMinutes {
		column = "total_minutes"
	}
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := `
        SELECT ` + attendanceLogColumns + `
        FROM attendance_log
        WHERE user_id = $1
        ORDER BY ` + column + ` ` + direction + `, id ` + direction + `
        LIMIT $2 OFFSET $3
    `
	logs := []domain.AttendanceLog{}
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit, offset); err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return logs, nil
	}

	ids := make([]int64, len(logs))
	byID := make(map[int64]*domain.AttendanceLog, len(logs))
	for i := range logs {
		ids[i] = logs[i].ID
		byID[logs[i].ID] = &logs[i]
	}

	const sessionsQuery = `
        SELECT id, log_id, check_in, check_out, session_minutes
        FROM attendance_session
        WHERE log_id = ANY($1)
        ORDER BY check_in ASC, id ASC
    `
	sessions := []domain.AttendanceSession{}
	if err := r.db.SelectContext(ctx, &sessions, sessionsQuery, ids); err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if log, ok := byID[session.LogID]; ok {
			log.Sessions = append(log.Sessions, session)
		}
	}
	return logs, nil
}

func (r *AttendanceLogRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM attendance_log WHERE user_id = $1`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *AttendanceLogRepository) findByID(ctx context.Context, id int64) (*domain.AttendanceLog, error) {
	const query = `
        SELECT ` + attendanceLogColumns + `
        FROM attendance_log
        WHERE id = $1
    `
	var log domain.AttendanceLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	if err := r.loadSessions(ctx, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *AttendanceLogRepository) loadSessions(ctx context.Context, log *domain.AttendanceLog) error {
	const query = `
        SELECT id, log_id, check_in, check_out, session_minutes
        FROM attendance_session
        WHERE log_id = $1
        ORDER BY check_in ASC, id ASC
    `
	sessions := []domain.AttendanceSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, log.ID); err != nil && err != sql.ErrNoRows {
		return err
	}
	log.Sessions = sessions
	return nil
}
