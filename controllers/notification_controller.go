package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
	"github.com/homelyeats/homelyeats_backend/websocket"
)

type NotificationController struct {
	notifications *services.NotificationService
	users         repositories.UserStore
	hub           *websocket.Hub
}

func NewNotificationController(notifications *services.NotificationService, users repositories.UserStore, hub *websocket.Hub) *NotificationController {
	return &NotificationController{notifications: notifications, users: users, hub: hub}
}

// GetNotifications returns a page of the caller's inbox, newest first
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	page := utils.ParseInt64(c.QueryParam("page"), 1)
	limit := utils.ParseInt64(c.QueryParam("limit"), 20)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	items, pagination, err := nc.notifications.List(ctx, actor.UserID, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []models.Notification{}
	}

	return c.JSON(http.StatusOK, models.PagedResponse{
		Status:     http.StatusOK,
		Message:    "Notifications retrieved successfully",
		Data:       items,
		Pagination: pagination,
	})
}

// GetUnreadCount returns how many notifications the caller has not read
func (nc *NotificationController) GetUnreadCount(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	count, err := nc.notifications.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Unread count retrieved successfully",
		Data:    map[string]int64{"count": count},
	})
}

// MarkAsRead flags one notification as read
func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	n, err := nc.notifications.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
		Data:    n,
	})
}

// MarkAllAsRead flags the caller's whole inbox as read
func (nc *NotificationController) MarkAllAsRead(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	modified, err := nc.notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
		Data:    map[string]int64{"modified": modified},
	})
}

// DeleteNotification removes one notification from the caller's inbox
func (nc *NotificationController) DeleteNotification(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := nc.notifications.Delete(ctx, id, actor.UserID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification deleted",
	})
}

// CreateNotification posts a system or review notification to the caller's own inbox
func (nc *NotificationController) CreateNotification(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.CreateNotificationRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	req.Title = utils.SanitizeInput(req.Title)
	req.Message = utils.SanitizeInput(req.Message)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	n, err := nc.notifications.Create(ctx, actor.UserID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created",
		Data:    n,
	})
}

// UpdateFCMToken stores the device token used for push delivery
func (nc *NotificationController) UpdateFCMToken(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.FCMTokenUpdateRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := nc.users.UpdateFCMToken(ctx, actor.UserID, req.FCMToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated successfully",
	})
}

// Subscribe upgrades the connection and streams the caller's notifications live
func (nc *NotificationController) Subscribe(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	return websocket.HandleWebSocket(c, nc.hub, actor.UserID)
}
