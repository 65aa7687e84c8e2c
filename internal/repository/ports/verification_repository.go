package ports

import (
	"context"
	"time"

	"github.com/timexa/timexa-backend/internal/domain"
)

// VerificationRepository stores hashed one-time passcodes.
type VerificationRepository interface {
	// DeleteActive removes every ACTIVE record for the scope, so a fresh
	// issue leaves at most one live code per (identifier, purpose).
	DeleteActive(ctx context.Context, identifier string, purpose domain.VerificationPurpose) error
	Create(ctx context.Context, identifier string, purpose domain.VerificationPurpose, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.Verification, error)
	// FindLive returns the newest ACTIVE, unexpired record for the scope
	// whose attempt count is still below maxAttempts.
	FindLive(ctx context.Context, identifier string, purpose domain.VerificationPurpose, now time.Time, maxAttempts int) (*domain.Verification, error)
	IncrementAttempts(ctx context.Context, id int64) error
	// DeleteByID removes the record and reports whether it was still
	// present, making single-use enforcement atomic.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
