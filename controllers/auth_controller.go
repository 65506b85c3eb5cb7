package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
	"github.com/homelyeats/homelyeats_backend/utils"
)

// AuthController handles accounts and role switching
type AuthController struct {
	users     repositories.UserStore
	jwtSecret string
	now       func() time.Time
}

// NewAuthController creates a new auth controller
func NewAuthController(users repositories.UserStore, jwtSecret string) *AuthController {
	return &AuthController{users: users, jwtSecret: jwtSecret, now: time.Now}
}

// Register creates an account and logs it in
func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return badRequest(c, "Invalid email format")
	}
	phone := ""
	if req.Phone != "" {
		if phone, err = utils.SanitizePhone(req.Phone); err != nil {
			return badRequest(c, "Invalid phone number format")
		}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	roles := []string{models.RoleUser}
	activeRole := models.RoleUser
	if req.Role == models.RoleHost {
		roles = append(roles, models.RoleHost)
		activeRole = models.RoleHost
	}

	now := ac.now()
	user := &models.User{
		Name:       utils.SanitizeInput(req.Name),
		Email:      email,
		Password:   hashed,
		Roles:      roles,
		ActiveRole: activeRole,
		Phone:      phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := ac.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		return respondError(c, err)
	}

	return ac.issueToken(c, http.StatusCreated, "Registration successful", user)
}

// Login checks credentials and returns a token for the user's active role
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := ac.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return respondError(c, err)
	}
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	return ac.issueToken(c, http.StatusOK, "Login successful", user)
}

// Verify returns the account behind the presented token
func (ac *AuthController) Verify(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := ac.users.GetUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return unauthorized(c)
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data:    user,
	})
}

// BecomeHost grants the host role and switches to it
func (ac *AuthController) BecomeHost(c echo.Context) error {
	return ac.switchTo(c, models.RoleHost, true)
}

// SwitchRole changes the active role to one the user already holds
func (ac *AuthController) SwitchRole(c echo.Context) error {
	var req models.SwitchRoleRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	return ac.switchTo(c, req.Role, false)
}

func (ac *AuthController) switchTo(c echo.Context, role string, grant bool) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := ac.users.GetUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return unauthorized(c)
		}
		return respondError(c, err)
	}

	roles := user.Roles
	if !user.HasRole(role) {
		if !grant {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "You do not have the " + role + " role",
			})
		}
		roles = append(append([]string{}, roles...), role)
	}

	updated, err := ac.users.UpdateRoles(ctx, user.ID, roles, role)
	if err != nil {
		return respondError(c, err)
	}

	return ac.issueToken(c, http.StatusOK, "Active role is now "+role, updated)
}

func (ac *AuthController) issueToken(c echo.Context, status int, message string, user *models.User) error {
	token, err := middleware.GenerateJWT(ac.jwtSecret, user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    models.AuthResponse{Token: token, User: user},
	})
}
