package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"townhall/config"
	"townhall/cron"
	"townhall/database"
	appointmentRepo "townhall/database/repository/appointment"
	deviceRepo "townhall/database/repository/device"
	notifRepo "townhall/database/repository/notification"
	userRepoPkg "townhall/database/repository/user"
	"townhall/handlers"
	"townhall/middleware"
	"townhall/routes"
	"townhall/services/appointment"
	"townhall/services/notification"
	"townhall/services/notifier"
	"townhall/services/reminder"
	"townhall/services/user"
	"townhall/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	notificationRepo := notifRepo.NewMongoNotificationRepo()
	scheduledRepo := notifRepo.NewMongoScheduledRepo()
	devRepo := deviceRepo.NewMongoDeviceTokenRepo()

	// The change feed carries every document write to the event-triggered
	// notifier and to live notification views.
	feed := database.NewMemoryChangeFeed()
	pushSender := notification.NewFCMPushSender()

	// services.
	userService := &user.DefaultUserService{
		Repo:   userRepo,
		Logger: logger,
	}

	appointmentService := &appointment.DefaultAppointmentService{
		Repo:   apptRepo,
		Feed:   feed,
		Logger: logger,
	}

	eventNotifier := &notifier.EventNotifier{
		Users:         userRepo,
		Notifications: notificationRepo,
		Scheduled:     scheduledRepo,
		Devices:       devRepo,
		Push:          pushSender,
		Feed:          feed,
		Logger:        logger,
	}
	eventNotifier.Register(feed)

	controllers := notification.NewRegistry(func() *notification.Controller {
		return notification.NewController(
			notificationRepo,
			scheduledRepo,
			devRepo,
			pushSender,
			feed,
			logger,
			int64(config.AppConfig.NotificationPageSize),
		)
	})

	drainer := &reminder.Drainer{
		Scheduled: scheduledRepo,
		Devices:   devRepo,
		Push:      pushSender,
		Feed:      feed,
		Logger:    logger,
	}
	cron.InitDrainWorker(drainer)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Auth:          handlers.NewAuthHandler(userService, controllers),
		Users:         handlers.NewUserHandler(userService),
		Appointments:  handlers.NewAppointmentHandler(appointmentService),
		Notifications: handlers.NewNotificationHandler(controllers),
		Devices:       handlers.NewDeviceHandler(devRepo, controllers),
	}
	routes.SetupRouter(router, handlerBundle)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on :%s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
