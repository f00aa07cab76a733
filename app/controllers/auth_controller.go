package controllers

import (
	"errors"
	"net/http"

	"github.com/vastrahub/vastra/app/jobs"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/pkg/auth"
	"github.com/vastrahub/vastra/pkg/bind"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/middleware"
	"github.com/vastrahub/vastra/pkg/queue"
	"github.com/vastrahub/vastra/pkg/response"
)

// AuthController serves registration, login and password resets.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController wires the controller.
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register handles POST /api/auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	user, token, err := c.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.BadRequest(w, "Email is already registered")
			return
		}
		logger.Error("auth: register failed", "error", err)
		response.Internal(w)
		return
	}

	setSessionCookie(w, token)
	response.Created(w, response.Payload{"user": user.Sanitized(), "token": token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login. Wrong email and wrong password
// produce the same message.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	user, token, err := c.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		logger.Error("auth: login failed", "error", err)
		response.Internal(w)
		return
	}

	setSessionCookie(w, token)
	response.OK(w, response.Payload{"user": user.Sanitized(), "token": token})
}

// Logout handles POST /api/auth/logout by expiring the cookie.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
	response.OK(w, response.Payload{"message": "Logged out"})
}

// Me handles GET /api/auth/me for the signed-in account.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	response.OK(w, response.Payload{"user": map[string]interface{}{
		"_id":   identity.ID,
		"name":  identity.Name,
		"email": identity.Email,
		"role":  identity.Role,
	}})
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Forgot handles POST /api/auth/password/forgot. The response never
// reveals whether the email has an account.
func (c *AuthController) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	token, user, err := c.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		logger.Error("auth: forgot password failed", "error", err)
		response.Internal(w)
		return
	}
	if token != "" {
		if err := queue.Dispatch(&jobs.PasswordResetMailJob{
			Email: user.Email,
			Name:  user.Name,
			Token: token,
		}); err != nil {
			logger.Error("auth: reset mail dispatch failed", "error", err)
		}
	}
	response.OK(w, response.Payload{"message": "If that email is registered, a reset link is on its way"})
}

type resetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Reset handles POST /api/auth/password/reset.
func (c *AuthController) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	if err := c.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			response.BadRequest(w, "Reset token is invalid or expired")
			return
		}
		logger.Error("auth: reset password failed", "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{"message": "Password updated"})
}

// setSessionCookie stores the JWT in an http-only cookie alongside the
// JSON token, so both SPA and server-rendered clients work.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   config.CookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}
