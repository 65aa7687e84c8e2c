package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/util"
)

type memoryUserRepo struct {
	byEmail map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, email, name string, passwordHash, passwordSalt []byte, role string) (*domain.User, error) {
	if _, ok := r.byEmail[email]; ok {
		return nil, errUniqueViolation()
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         role,
		IsActive:     true,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		CreatedAt:    time.Now(),
	}
	r.byEmail[email] = user
	out := *user
	return &out, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	for _, user := range r.byEmail {
		if user.ID == id {
			user.PasswordHash = append([]byte(nil), passwordHash...)
			user.PasswordSalt = append([]byte(nil), passwordSalt...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memoryUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.byEmail))
	for _, user := range r.byEmail {
		out = append(out, *user)
	}
	return out, nil
}

type memorySessionRepo struct {
	nextID   int64
	sessions map[string]*domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *memorySessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	r.nextID++
	session := &domain.Session{
		ID:        r.nextID,
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	r.sessions[token] = session
	out := *session
	return &out, nil
}

func (r *memorySessionRepo) DeactivateSession(ctx context.Context, token string) error {
	if session, ok := r.sessions[token]; ok {
		session.IsActive = false
	}
	return nil
}

func (r *memorySessionRepo) DeactivateByUser(ctx context.Context, userID uuid.UUID) error {
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (r *memorySessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	session, ok := r.sessions[token]
	if !ok || !session.IsActive || time.Now().After(session.ExpiresAt) {
		return nil, sql.ErrNoRows
	}
	out := *session
	return &out, nil
}

type recordingMailer struct {
	welcomeTo  []string
	welcomeErr error

	otpTo   []string
	lastOTP string
	otpErr  error
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, name string) error {
	m.welcomeTo = append(m.welcomeTo, email)
	return m.welcomeErr
}

func (m *recordingMailer) SendOTP(ctx context.Context, email, otp string, expiresIn time.Duration) error {
	m.otpTo = append(m.otpTo, email)
	m.lastOTP = otp
	return m.otpErr
}

type authFixture struct {
	users    *memoryUserRepo
	sessions *memorySessionRepo
	mailer   *recordingMailer
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	users := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	mailer := &recordingMailer{}
	otps := NewVerificationService(newMemoryVerificationRepo(), 3, 4)

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := NewAuthService(users, sessions, otps, mailer, util.NewJWTManager("test-secret", time.Hour), log)
	return &authFixture{users: users, sessions: sessions, mailer: mailer, svc: svc}
}

func TestAuthService_RegisterNormalizesAndSendsWelcome(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.svc.Register(ctx, "  User@Example.COM ", "secret1", " Jordan ")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Name != "Jordan" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %q", user.Role)
	}
	if len(f.mailer.welcomeTo) != 1 || f.mailer.welcomeTo[0] != "user@example.com" {
		t.Fatalf("expected one welcome email, got %v", f.mailer.welcomeTo)
	}
}

func TestAuthService_RegisterSurvivesWelcomeFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.mailer.welcomeErr = errors.New("smtp down")

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("welcome failure must not fail registration: %v", err)
	}
	if _, err := f.users.FindByEmail(ctx, "user@example.com"); err != nil {
		t.Fatalf("user should exist despite welcome failure: %v", err)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.svc.Register(ctx, "USER@example.com", "secret2", "Other"); !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), "user@example.com", "short", "Jordan"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := f.svc.Login(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}

	user, err := f.svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("unexpected user %q", user.Email)
	}

	if err := f.svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, result.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := f.svc.Login(ctx, "user@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_CreateDefaultAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	admin, created, err := f.svc.CreateDefaultAdmin(ctx)
	if err != nil {
		t.Fatalf("CreateDefaultAdmin: %v", err)
	}
	if !created {
		t.Fatalf("expected first call to create the admin")
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}

	again, created, err := f.svc.CreateDefaultAdmin(ctx)
	if err != nil {
		t.Fatalf("second CreateDefaultAdmin: %v", err)
	}
	if created {
		t.Fatalf("second call must not create a new admin")
	}
	if again.ID != admin.ID {
		t.Fatalf("expected same admin account")
	}

	if _, err := f.svc.Login(ctx, "admin@admin.com", "Admin@123"); err != nil {
		t.Fatalf("default admin login: %v", err)
	}
}

func TestAuthService_ForgotPasswordOTP(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if err := f.svc.ForgotPasswordOTP(ctx, "nobody@example.com", 0); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.svc.ForgotPasswordOTP(ctx, "user@example.com", 0); err != nil {
		t.Fatalf("ForgotPasswordOTP: %v", err)
	}
	if len(f.mailer.otpTo) != 1 || len(f.mailer.lastOTP) != 4 {
		t.Fatalf("expected a 4-digit code emailed once, got %v %q", f.mailer.otpTo, f.mailer.lastOTP)
	}
}

func TestAuthService_ForgotPasswordOTPDeliveryFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.mailer.otpErr = errors.New("resend outage")

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.svc.ForgotPasswordOTP(ctx, "user@example.com", 0); !errors.Is(err, ErrOTPDelivery) {
		t.Fatalf("expected ErrOTPDelivery, got %v", err)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := f.svc.Login(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := f.svc.ForgotPasswordOTP(ctx, "user@example.com", 0); err != nil {
		t.Fatalf("ForgotPasswordOTP: %v", err)
	}

	if err := f.svc.ResetPassword(ctx, "user@example.com", f.mailer.lastOTP, "new-secret"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, err := f.svc.Login(ctx, "user@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "user@example.com", "new-secret"); err != nil {
		t.Fatalf("new password login: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, login.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("old sessions must be revoked, got %v", err)
	}
}

func TestAuthService_ResetPasswordMasksUnknownEmail(t *testing.T) {
	f := newAuthFixture()
	if err := f.svc.ResetPassword(context.Background(), "nobody@example.com", "1234", "new-secret"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for unknown email, got %v", err)
	}
}

func TestAuthService_ResetPasswordRejectsWrongOTP(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	if _, err := f.svc.Register(ctx, "user@example.com", "secret1", "Jordan"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.svc.ForgotPasswordOTP(ctx, "user@example.com", 0); err != nil {
		t.Fatalf("ForgotPasswordOTP: %v", err)
	}

	wrong := "0000"
	if wrong == f.mailer.lastOTP {
		wrong = "1111"
	}
	if err := f.svc.ResetPassword(ctx, "user@example.com", wrong, "new-secret"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "user@example.com", "secret1"); err != nil {
		t.Fatalf("password must be unchanged after failed reset: %v", err)
	}
}
