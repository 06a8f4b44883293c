package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/config"
	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/notifier"
	"github.com/ciaapp/seat-reservation/internal/repository"
	"github.com/ciaapp/seat-reservation/internal/utils"
)

// AuthHandler bundles dependencies for account endpoints: registration,
// login, identity echo and the password-reset flow.
type AuthHandler struct {
	Cfg         config.Config
	Users       *repository.UserRepo
	ResetTokens *repository.ResetTokenRepo
	Notifier    notifier.Notifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rt *repository.ResetTokenRepo, n notifier.Notifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, ResetTokens: rt, Notifier: n}
}

// ----- DTOs -----

type registerReq struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
type authResp struct {
	AccessToken string    `json:"access_token"`
	Expires     time.Time `json:"expires"`
	User        userPart  `json:"user"`
}

// Register creates an account and returns an access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.FullName, req.Email, req.PhoneNumber, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u := model.User{ID: uid, FullName: req.FullName, Email: req.Email, PhoneNumber: req.PhoneNumber, Scopes: "default"}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		AccessToken: access.Token,
		Expires:     access.Exp,
		User:        userPart{ID: uid, FullName: req.FullName, Email: req.Email},
	})
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		AccessToken: access.Token,
		Expires:     access.Exp,
		User:        userPart{ID: u.ID, FullName: u.FullName, Email: u.Email},
	})
}

// Me returns the authenticated identity as seen by the server.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   ident.UserID,
		"user_name": ident.FullName,
		"user_role": ident.Role.String(),
	})
}

// ForgotPassword issues a reset token and emails it.  The response is
// identical whether or not the address exists, to avoid account
// enumeration.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	generic := echo.Map{"message": "if the account exists, a reset email has been sent"}
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, generic)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	token, exp, err := h.ResetTokens.Issue(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset token failed"})
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nUse the token below to reset your password. It expires at %s.\n\n%s\n\nIf you did not request this, ignore this email.\n",
		u.FullName, exp.Format(time.RFC3339), token)
	if err := h.Notifier.Notify(ctx, u.Email, "Password reset", body, nil); err != nil {
		c.Logger().Errorf("password reset email failed for user %d: %v", u.ID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send reset email"})
	}
	return c.JSON(http.StatusOK, generic)
}

// ResetPassword redeems a reset token and replaces the password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/new_password required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.ResetTokens.Validate(ctx, req.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.UpdatePassword(ctx, userID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	if err := h.ResetTokens.MarkUsed(ctx, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
