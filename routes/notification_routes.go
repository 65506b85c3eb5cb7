package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(authGroup *echo.Group, notificationController *controllers.NotificationController) {
	notificationGroup := authGroup.Group("/notifications")

	notificationGroup.GET("", notificationController.GetNotifications)
	notificationGroup.GET("/unread/count", notificationController.GetUnreadCount)
	notificationGroup.PUT("/read/all", notificationController.MarkAllAsRead)
	notificationGroup.PUT("/:id/read", notificationController.MarkAsRead)
	notificationGroup.DELETE("/:id", notificationController.DeleteNotification)
	notificationGroup.POST("", notificationController.CreateNotification)

	// FCM token update endpoint
	authGroup.POST("/users/fcm-token", notificationController.UpdateFCMToken)

	// live notifications; browsers pass the JWT as ?token=
	authGroup.GET("/ws", notificationController.Subscribe)
}
