package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/logger"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
)

const requestTimeout = 10 * time.Second

// respondError maps service errors onto HTTP responses. Anything that is not
// a lifecycle error is logged and reported as a 500 without details.
func respondError(c echo.Context, err error) error {
	var lerr *services.LifecycleError
	if errors.As(err, &lerr) {
		status := statusFor(lerr.Kind)
		resp := models.Response{Status: status, Message: lerr.Message}
		if errors.Is(lerr.Kind, services.ErrCapacityExceeded) {
			resp.Data = map[string]int{"remainingSpots": lerr.Remaining}
		}
		return c.JSON(status, resp)
	}

	logger.ErrorLogger.WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).WithError(err).Error("request failed")

	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "The server is busy, please retry",
		})
	}
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, services.ErrInvalidState),
		errors.Is(kind, services.ErrCapacityExceeded),
		errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized",
	})
}

// bindAndValidate decodes the body into req and runs its validate tags. It
// returns the problem to report, or "" when req is usable.
func bindAndValidate(c echo.Context, req interface{}) string {
	if err := c.Bind(req); err != nil {
		return "Invalid request body"
	}
	if err := c.Validate(req); err != nil {
		return utils.ValidationMessage(err)
	}
	return ""
}

// pathID parses an ObjectID route parameter
func pathID(c echo.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
