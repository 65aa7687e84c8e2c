package service

import (
	"context"
	"errors"
	"time"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/repository/ports"
	"github.com/timexa/timexa-backend/internal/util"
)

var (
	// ErrOTPInvalid covers every verification failure: wrong code, expired
	// code, exhausted attempts, or no code issued at all. Callers must not
	// be able to tell these apart.
	ErrOTPInvalid     = errors.New("invalid or expired code")
	ErrUnknownPurpose = errors.New("unknown verification purpose")
)

type VerificationService struct {
	verifications ports.VerificationRepository
	maxAttempts   int
	defaultLength int
	now           func() time.Time
}

type IssueResult struct {
	OTP    string
	Record *domain.Verification
}

func NewVerificationService(verifications ports.VerificationRepository, maxAttempts, defaultLength int) *VerificationService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if defaultLength <= 0 {
		defaultLength = 4
	}
	return &VerificationService{
		verifications: verifications,
		maxAttempts:   maxAttempts,
		defaultLength: defaultLength,
		now:           time.Now,
	}
}

// Issue replaces any live code for the scope with a fresh one. The plaintext
// in the result is handed out exactly once, for out-of-band delivery.
func (s *VerificationService) Issue(ctx context.Context, identifier string, purpose domain.VerificationPurpose, length int) (*IssueResult, error) {
	if !purpose.Valid() {
		return nil, ErrUnknownPurpose
	}
	if length <= 0 {
		length = s.defaultLength
	}

	if err := s.verifications.DeleteActive(ctx, identifier, purpose); err != nil {
		return nil, err
	}

	otp, err := util.GenerateNumericOTP(length)
	if err != nil {
		return nil, err
	}
	hash, salt, err := util.DeriveValue(otp)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(purpose.ExpiresIn())
	record, err := s.verifications.Create(ctx, identifier, purpose, hash, salt, expiresAt)
	if err != nil {
		return nil, err
	}
	return &IssueResult{OTP: otp, Record: record}, nil
}

// Verify checks a candidate against the newest live code for the scope.
// A mismatch counts against the attempt budget; a match consumes the code.
func (s *VerificationService) Verify(ctx context.Context, identifier string, purpose domain.VerificationPurpose, candidate string) error {
	record, err := s.verifications.FindLive(ctx, identifier, purpose, s.now(), s.maxAttempts)
	if err != nil {
		if isNotFound(err) {
			return ErrOTPInvalid
		}
		return err
	}

	if !util.VerifyValue(candidate, record.OTPSalt, record.OTPHash) {
		if err := s.verifications.IncrementAttempts(ctx, record.ID); err != nil {
			return err
		}
		return ErrOTPInvalid
	}

	deleted, err := s.verifications.DeleteByID(ctx, record.ID)
	if err != nil {
		return err
	}
	if !deleted {
		// A concurrent verification consumed the code first.
		return ErrOTPInvalid
	}
	return nil
}
