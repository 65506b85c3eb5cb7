package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/homelyeats/homelyeats_backend/config"
	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/logger"
	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/repositories"
	"github.com/homelyeats/homelyeats_backend/routes"
	"github.com/homelyeats/homelyeats_backend/security"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
	"github.com/homelyeats/homelyeats_backend/websocket"
)

const lockTTL = 10 * time.Second

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal(err)
	}
	if err := settings.Validate(); err != nil {
		log.Fatal(err)
	}

	logger.InitLoggers(logger.Options{File: settings.LogFile, Level: settings.LogLevel})

	store := openStore(settings)
	locker := openLocker(settings)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	notificationService := services.NewNotificationService(store, store).WithRealtime(wsHub)
	if app := config.InitFirebase(settings); app != nil {
		sender, err := services.NewFCMSender(context.Background(), app)
		if err != nil {
			logger.ErrorLogger.WithError(err).Error("FCM client unavailable, push notifications disabled")
		} else {
			notificationService.WithPush(sender)
		}
	}
	if settings.SMTPHost != "" {
		notificationService.WithMailer(services.NewSMTPMailer(settings.SMTPHost, settings.SMTPPort, settings.SMTPUser, settings.SMTPPass, settings.MailFrom))
	}

	bookingService := services.NewBookingService(store, store, notificationService, locker)
	listingService := services.NewListingService(store, locker)
	reviewService := services.NewReviewService(store, store, store, notificationService)
	profileService := services.NewProfileService(store, store, store)

	// Create a new Echo instance
	e := echo.New()
	e.Validator = utils.NewCustomValidator()

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS(settings.CORSAllowedOrigins))
	e.Use(echoMiddleware.Secure())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: settings.CORSAllowedOrigins,
		AllowInlineJS:  settings.IsDevelopment(),
	}))
	e.Use(security.RequireJSON())

	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
			"store":  settings.StoreDriver,
		})
	})

	routes.SetupRoutes(e, settings.JWTSecret, routes.Controllers{
		Auth:          controllers.NewAuthController(store, settings.JWTSecret),
		Listings:      controllers.NewListingController(listingService, bookingService),
		Bookings:      controllers.NewBookingController(bookingService),
		Notifications: controllers.NewNotificationController(notificationService, store, wsHub),
		Reviews:       controllers.NewReviewController(reviewService),
		Profiles:      controllers.NewProfileController(profileService),
	})

	logger.InfoLogger.WithField("port", settings.Port).Info("HomelyEats backend starting")
	e.Logger.Fatal(e.Start(":" + settings.Port))
}

func openStore(settings *config.Settings) repositories.Store {
	if settings.UseMemoryStore() {
		logger.InfoLogger.Info("Using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore()
	}
	client := config.ConnectDB(settings)
	return repositories.NewMongoStore(client.Database(settings.DBName))
}

func openLocker(settings *config.Settings) services.ListingLocker {
	client := config.ConnectRedis(settings)
	if client == nil {
		return services.NewKeyedLocker()
	}
	return services.NewRedisLocker(client, lockTTL)
}
