package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
)

// ProfileController handles account profiles and the host directory
type ProfileController struct {
	profiles *services.ProfileService
}

func NewProfileController(profiles *services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

// GetProfile returns the caller's account
func (pc *ProfileController) GetProfile(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := pc.profiles.Profile(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// UpdateProfile edits the caller's name, phone, bio or location
func (pc *ProfileController) UpdateProfile(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	req, msg := profileRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := pc.profiles.UpdateProfile(ctx, actor.UserID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
		Data:    user,
	})
}

// GetHosts lists every host by name
func (pc *ProfileController) GetHosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	hosts, err := pc.profiles.Hosts(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Hosts retrieved successfully",
		Data:    hosts,
	})
}

// GetHost returns a host's profile, rating and dinners
func (pc *ProfileController) GetHost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid host ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	profile, err := pc.profiles.Host(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Host retrieved successfully",
		Data:    profile,
	})
}

// UpdateHost edits the calling host's own profile
func (pc *ProfileController) UpdateHost(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid host ID")
	}

	req, msg := profileRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	user, err := pc.profiles.UpdateHost(ctx, actor.UserID, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Host profile updated successfully",
		Data:    user,
	})
}

// profileRequest binds a profile edit and sanitizes the fields it sets
func profileRequest(c echo.Context) (models.ProfileUpdateRequest, string) {
	var req models.ProfileUpdateRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return req, msg
	}
	for _, field := range []*string{req.Name, req.Bio, req.Location} {
		if field != nil {
			*field = utils.SanitizeInput(*field)
		}
	}
	if req.Phone != nil && *req.Phone != "" {
		phone, err := utils.SanitizePhone(*req.Phone)
		if err != nil {
			return req, "Invalid phone number"
		}
		req.Phone = &phone
	}
	return req, ""
}
