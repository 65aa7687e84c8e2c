package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/repository/ports"
	"github.com/timexa/timexa-backend/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyUsed   = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user with this email does not exist")
	ErrPasswordTooWeak    = errors.New("password does not meet the minimum requirements")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrOTPDelivery        = errors.New("failed to send the OTP email")
)

const (
	defaultAdminEmail    = "admin@admin.com"
	defaultAdminPassword = "Admin@123"
	defaultAdminName     = "Admin"
)

// Mailer delivers transactional email. Welcome failures are tolerated;
// OTP delivery failures are not.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendOTP(ctx context.Context, email, otp string, expiresIn time.Duration) error
}

// OTPProvider is the slice of the verification service the auth flows use.
type OTPProvider interface {
	Issue(ctx context.Context, identifier string, purpose domain.VerificationPurpose, length int) (*IssueResult, error)
	Verify(ctx context.Context, identifier string, purpose domain.VerificationPurpose, candidate string) error
}

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	otps     OTPProvider
	mailer   Mailer
	jwt      *util.JWTManager
	log      *logrus.Logger
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, otps OTPProvider, mailer Mailer, jwtManager *util.JWTManager, log *logrus.Logger) *AuthService {
	if log == nil {
		log = logrus.New()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		otps:     otps,
		mailer:   mailer,
		jwt:      jwtManager,
		log:      log,
	}
}

// Register creates an account and sends a welcome email. A failed welcome
// email is logged and swallowed; the account stays created.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := util.ValidatePassword(password); err != nil {
		return nil, ErrPasswordTooWeak
	}

	hash, salt, err := util.DeriveValue(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, name, hash, salt, domain.RoleUser)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			s.log.WithError(err).WithField("email", user.Email).Warn("welcome email failed")
		}
	}
	return user, nil
}

// Login reports the same failure for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyValue(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

// Authenticate resolves a bearer token to its user. The token must parse,
// and its session must still be active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if isNotFound(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return user, nil
}

// CreateDefaultAdmin provisions the bootstrap admin account. It reports
// whether the account was created or already present.
func (s *AuthService) CreateDefaultAdmin(ctx context.Context) (*domain.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, defaultAdminEmail)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	hash, salt, err := util.DeriveValue(defaultAdminPassword)
	if err != nil {
		return nil, false, err
	}
	admin, err := s.users.Create(ctx, defaultAdminEmail, defaultAdminName, hash, salt, domain.RoleAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.users.FindByEmail(ctx, defaultAdminEmail)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return admin, true, nil
}

// ForgotPasswordOTP issues a reset code and emails it. Delivery failure is
// fatal: the caller must know the code never left the building.
func (s *AuthService) ForgotPasswordOTP(ctx context.Context, email string, length int) error {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	issued, err := s.otps.Issue(ctx, user.Email, domain.PurposeResetPassword, length)
	if err != nil {
		return err
	}

	if s.mailer == nil {
		return ErrOTPDelivery
	}
	if err := s.mailer.SendOTP(ctx, user.Email, issued.OTP, domain.PurposeResetPassword.ExpiresIn()); err != nil {
		s.log.WithError(err).WithField("email", user.Email).Error("otp email failed")
		return ErrOTPDelivery
	}
	return nil
}

// ResetPassword verifies the OTP and stores a new password. Unknown emails
// and bad codes are indistinguishable to prevent account enumeration.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrOTPInvalid
		}
		return err
	}

	if err := s.otps.Verify(ctx, user.Email, domain.PurposeResetPassword, otp); err != nil {
		return err
	}

	if err := util.ValidatePassword(newPassword); err != nil {
		return ErrPasswordTooWeak
	}
	hash, salt, err := util.DeriveValue(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}

	// Old bearer tokens stop working once the password changes.
	if err := s.sessions.DeactivateByUser(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("session revocation failed")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
