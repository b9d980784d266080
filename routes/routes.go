package routes

import (
	"time"

	"townhall/handlers"
	"townhall/middleware"
	"townhall/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle gathers the handler instances wired in main.
type HandlerBundle struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Appointments  *handlers.AppointmentHandler
	Notifications *handlers.NotificationHandler
	Devices       *handlers.DeviceHandler
}

// RegisterAuthRoutes registers login/logout endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Auth.LoginHandler)

		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/logout", hb.Auth.LogoutHandler)
	}
}

// RegisterUserRoutes registers profile and admin user-management endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("/me", hb.Users.GetProfileHandler)

		// User management is admin only.
		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.POST("", hb.Users.CreateUserHandler)
		admin.GET("", hb.Users.ListUsersHandler)
		admin.GET("/:id", hb.Users.GetUserHandler)
		admin.PUT("/:id", hb.Users.UpdateUserHandler)
		admin.DELETE("/:id", hb.Users.DeleteUserHandler)
	}
}

// RegisterAppointmentRoutes registers the scheduling endpoints. Creation and
// deletion are secretary/admin actions; status updates are open to mayors too.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("", hb.Appointments.ListHandler)
		api.GET("/:id", hb.Appointments.GetHandler)

		clerical := api.Group("")
		clerical.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary))
		clerical.POST("", hb.Appointments.CreateHandler)
		clerical.DELETE("/:id", hb.Appointments.DeleteHandler)

		editors := api.Group("")
		editors.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSecretary, models.RoleMayor))
		editors.PUT("/:id", hb.Appointments.UpdateHandler)
		editors.PATCH("/:id/status", hb.Appointments.UpdateStatusHandler)
	}
}

// RegisterNotificationRoutes registers the in-app feed endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/notifications")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("", hb.Notifications.ListHandler)
		api.PATCH("/:id/read", hb.Notifications.MarkReadHandler)
		api.DELETE("/:id", hb.Notifications.DeleteHandler)
		api.DELETE("", hb.Notifications.ClearHandler)
		api.POST("/test", hb.Notifications.SendTestHandler)
	}
}

// RegisterDeviceRoutes registers device-token registry endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/devices")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.POST("", hb.Devices.RegisterHandler)
		api.GET("", hb.Devices.ListHandler)
		api.DELETE("/:token", hb.Devices.DeleteHandler)
	}
}

// SetupRouter applies CORS and registers every route group.
func SetupRouter(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
}
