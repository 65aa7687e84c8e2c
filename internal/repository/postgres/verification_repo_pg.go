package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/timexa/timexa-backend/internal/domain"
)

type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepo(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

const verificationColumns = `id, identifier, purpose, otp_hash, otp_salt, expires_at, attempt_count, status, created_at`

func (r *VerificationRepository) DeleteActive(ctx context.Context, identifier string, purpose domain.VerificationPurpose) error {
	const query = `
        DELETE FROM verification
        WHERE identifier = $1 AND purpose = $2 AND status = $3
    `
	_, err := r.db.ExecContext(ctx, query, identifier, purpose, domain.VerificationActive)
	return err
}

func (r *VerificationRepository) Create(ctx context.Context, identifier string, purpose domain.VerificationPurpose, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.Verification, error) {
	const query = `
        INSERT INTO verification (identifier, purpose, otp_hash, otp_salt, expires_at, attempt_count, status)
        VALUES ($1, $2, $3, $4, $5, 0, $6)
        RETURNING ` + verificationColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, identifier, purpose, otpHash, otpSalt, expiresAt, domain.VerificationActive)
	var verification domain.Verification
	if err := row.StructScan(&verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *VerificationRepository) FindLive(ctx context.Context, identifier string, purpose domain.VerificationPurpose, now time.Time, maxAttempts int) (*domain.Verification, error) {
	const query = `
        SELECT ` + verificationColumns + `
        FROM verification
        WHERE identifier = $1
          AND purpose = $2
          AND status = $3
          AND expires_at > $4
          AND attempt_count < $5
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var verification domain.Verification
	if err := r.db.GetContext(ctx, &verification, query, identifier, purpose, domain.VerificationActive, now, maxAttempts); err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id int64) error {
	const query = `
        UPDATE verification
        SET attempt_count = attempt_count + 1
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *VerificationRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	const query = `
        DELETE FROM verification
        WHERE id = $1
        RETURNING id
    `
	var deleted int64
	if err := r.db.QueryRowxContext(ctx, query, id).Scan(&deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
