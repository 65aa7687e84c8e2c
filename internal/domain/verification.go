package domain

import "time"

type VerificationPurpose string

const (
	PurposeResetPassword VerificationPurpose = "RESET_PASSWORD"
	PurposeVerifyEmail   VerificationPurpose = "VERIFY_EMAIL"
	PurposeVerifyPhone   VerificationPurpose = "VERIFY_PHONE"
)

func (p VerificationPurpose) Valid() bool {
	switch p {
	case PurposeResetPassword, PurposeVerifyEmail, PurposeVerifyPhone:
		return true
	}
	return false
}

// ExpiresIn returns how long a code issued for this purpose stays live.
// Unknown purposes fall back to five minutes.
func (p VerificationPurpose) ExpiresIn() time.Duration {
	switch p {
	case PurposeVerifyEmail:
		return 10 * time.Minute
	default:
		return 5 * time.Minute
	}
}

type VerificationStatus string

const (
	VerificationActive  VerificationStatus = "ACTIVE"
	VerificationUsed    VerificationStatus = "USED"
	VerificationExpired VerificationStatus = "EXPIRED"
)

// Verification is a stored one-time passcode. Only the argon2 hash of the
// code is ever persisted; the plaintext leaves the process once, by email.
type Verification struct {
	ID           int64               `db:"id" json:"id"`
	Identifier   string              `db:"identifier" json:"identifier"`
	Purpose      VerificationPurpose `db:"purpose" json:"purpose"`
	OTPHash      []byte              `db:"otp_hash" json:"-"`
	OTPSalt      []byte              `db:"otp_salt" json:"-"`
	ExpiresAt    time.Time           `db:"expires_at" json:"expires_at"`
	AttemptCount int                 `db:"attempt_count" json:"attempt_count"`
	Status       VerificationStatus  `db:"status" json:"status"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}
