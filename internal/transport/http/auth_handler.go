package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Apartment_APP_BackEnd/internal/ratelimit"
	"github.com/njprem/Apartment_APP_BackEnd/internal/service"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

const (
	msgInvalidLogin     = "Incorrect username or password"
	msgInactiveUser     = "Inactive user"
	msgResetRequested   = "If the email is registered, a password reset code has been sent."
	msgResetDelivery    = "Failed to send reset email. Please try again later."
	msgInvalidResetCode = "Invalid or expired reset code"
	msgInvalidBody      = "invalid request body"
	msgInternal         = "internal server error"
)

type AuthHandler struct {
	auth   *service.AuthService
	resets *service.PasswordResetService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, resets *service.PasswordResetService, limiter *RateLimiter) {
	h := &AuthHandler{auth: auth, resets: resets}

	g := e.Group("/api/v1/auth")
	g.POST("/login", h.login, limiter.For(ratelimit.AuthLogin))
	g.POST("/register", h.register, limiter.For(ratelimit.AuthRegister))
	g.POST("/forgot-password", h.forgotPassword, limiter.For(ratelimit.AuthForgotPassword))
	g.POST("/verify-reset-code", h.verifyResetCode, limiter.For(ratelimit.AuthResetPassword))
	// older clients still post to /verify-reset-otp; same class, same window
	g.POST("/verify-reset-otp", h.verifyResetCode, limiter.For(ratelimit.AuthResetPassword))
	g.POST("/reset-password", h.resetPassword, limiter.For(ratelimit.AuthResetPassword))

	g.GET("/me", h.me, limiter.For(ratelimit.APIDefault), RequireAuth(auth))
	g.POST("/change-password", h.changePassword, limiter.For(ratelimit.AuthResetPassword), RequireAuth(auth))
}

// login godoc
// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} AuthTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return unauthorized(c, msgInvalidLogin)
		case errors.Is(err, service.ErrInactiveAccount):
			return c.JSON(http.StatusBadRequest, util.Error(msgInactiveUser))
		default:
			log.Printf("auth: login failed: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
		}
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt.UTC().Format(time.RFC3339),
		User:        toAuthUser(result.User),
	})
}

// register godoc
// @Summary Register a resident account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "account"
// @Success 201 {object} AuthUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		Phone:           req.Phone,
		ApartmentNumber: req.ApartmentNumber,
		Building:        req.Building,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, util.Error("Username already registered"))
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusConflict, util.Error("Email already registered"))
		case errors.Is(err, service.ErrPasswordTooWeak), errors.Is(err, service.ErrPasswordTooLong), errors.Is(err, service.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			log.Printf("auth: register failed: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
		}
	}
	return c.JSON(http.StatusCreated, AuthUserResponse{User: toAuthUser(user)})
}

// me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthUserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) me(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	user, err := h.auth.CurrentUser(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return unauthorized(c, "could not validate credentials")
		}
		log.Printf("auth: load current user: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
	}
	return c.JSON(http.StatusOK, AuthUserResponse{User: toAuthUser(user)})
}

// changePassword godoc
// @Summary Change the password of the current account
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "passwords"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) changePassword(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	err := h.auth.ChangePassword(c.Request().Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			return c.JSON(http.StatusBadRequest, util.Error("Current password is incorrect"))
		case errors.Is(err, service.ErrPasswordTooWeak), errors.Is(err, service.ErrPasswordTooLong):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return unauthorized(c, "could not validate credentials")
		default:
			log.Printf("auth: change password failed: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
		}
	}
	return c.JSON(http.StatusOK, util.Message("Password updated successfully"))
}

// forgotPassword godoc
// @Summary Request a password reset code
// @Description Always answers with the same message whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	if err := h.resets.RequestReset(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, util.Error("a valid email is required"))
		case errors.Is(err, service.ErrDeliveryFailed):
			return c.JSON(http.StatusInternalServerError, util.Error(msgResetDelivery))
		default:
			log.Printf("auth: forgot password failed: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
		}
	}
	return c.JSON(http.StatusOK, util.Message(msgResetRequested))
}

// verifyResetCode godoc
// @Summary Check a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyResetCodeRequest true "email and code"
// @Success 200 {object} VerifyResetCodeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Router /api/v1/auth/verify-reset-code [post]
// @Router /api/v1/auth/verify-reset-otp [post]
func (h *AuthHandler) verifyResetCode(c echo.Context) error {
	var req VerifyResetCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	if err := h.resets.VerifyCode(c.Request().Context(), req.Email, req.OTP); err != nil {
		return h.resetCodeError(c, err)
	}
	return c.JSON(http.StatusOK, VerifyResetCodeResponse{Valid: true, Message: "Reset code is valid"})
}

// resetPassword godoc
// @Summary Reset the password with an emailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "email, code and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} RateLimitResponse
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidBody))
	}

	err := h.resets.CompleteReset(c.Request().Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrPasswordTooWeak) || errors.Is(err, service.ErrPasswordTooLong) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return h.resetCodeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("Password has been reset successfully"))
}

// resetCodeError answers invalid and expired codes identically.
func (h *AuthHandler) resetCodeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrResetCodeExpired):
		log.Printf("auth: reset code expired")
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidResetCode))
	case errors.Is(err, service.ErrResetCodeInvalid):
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidResetCode))
	default:
		log.Printf("auth: reset code check failed: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error(msgInternal))
	}
}
