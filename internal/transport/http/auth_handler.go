package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/timexa/timexa-backend/internal/domain"
	"github.com/timexa/timexa-backend/internal/metrics"
	"github.com/timexa/timexa-backend/internal/service"
	"github.com/timexa/timexa-backend/internal/util"
)

type AuthHandler struct {
	auth      *service.AuthService
	collector *metrics.Collector
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email     string `json:"email" validate:"required,email"`
	OTPLength int    `json:"otp_length" validate:"omitempty,min=4,max=10"`
}

type passwordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, limiter *IPRateLimiter, collector *metrics.Collector) {
	handler := &AuthHandler{auth: auth, collector: collector}

	group := e.Group("/api/auth")
	if limiter != nil {
		group.Use(limiter.Middleware())
	}

	group.POST("/create-user", handler.createUser)
	group.POST("/login", handler.login)
	group.POST("/create-default-admin", handler.createDefaultAdmin)
	group.POST("/forgot-password-otp", handler.forgotPasswordOTP)
	group.POST("/password-reset", handler.passwordReset)
	group.POST("/logout", handler.logout, RequireAuth(auth))
}

func (h *AuthHandler) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("email, password and name are required"))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusConflict, util.Error("user with this email already exists"))
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error("password must be at least 6 characters long"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create user"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"user":    userResponse(user),
		"message": "User created successfully",
	})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("email and password are required"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid email or password"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not log in"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       userResponse(result.User),
	})
}

func (h *AuthHandler) createDefaultAdmin(c echo.Context) error {
	admin, created, err := h.auth.CreateDefaultAdmin(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not create default admin"))
	}

	message := "Default admin already exists"
	status := http.StatusOK
	if created {
		message = "Default admin created successfully"
		status = http.StatusCreated
	}
	return c.JSON(status, util.Envelope{
		"user":    userResponse(admin),
		"message": message,
	})
}

func (h *AuthHandler) forgotPasswordOTP(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("a valid email is required"))
	}

	err := h.auth.ForgotPasswordOTP(c.Request().Context(), req.Email, req.OTPLength)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("user with this email does not exist"))
		case errors.Is(err, service.ErrOTPDelivery):
			return c.JSON(http.StatusInternalServerError, util.Error("could not send the OTP email"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not issue the OTP"))
		}
	}

	h.collector.RecordOTPIssued()
	return c.JSON(http.StatusOK, util.Message("OTP sent to your email"))
}

func (h *AuthHandler) passwordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("email, otp and new_password are required"))
	}

	err := h.auth.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			h.collector.RecordOTPVerification(false)
			return c.JSON(http.StatusBadRequest, util.Error("invalid or expired code"))
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error("password must be at least 6 characters long"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
		}
	}

	h.collector.RecordOTPVerification(true)
	return c.JSON(http.StatusOK, util.Message("Password reset successfully"))
}

func (h *AuthHandler) logout(c echo.Context) error {
	token, ok := CurrentToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not log out"))
	}
	return c.JSON(http.StatusOK, util.Message("Logged out successfully"))
}

func userResponse(user *domain.User) util.Envelope {
	return util.Envelope{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"is_active":  user.IsActive,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
