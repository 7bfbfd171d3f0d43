package routes

import (
	"log"
	"os"

	controller "writedesk/controllers"
	"writedesk/middleware"
	"writedesk/models"
	"writedesk/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints, throttled per client IP
	auth.Post("/register", middleware.LoginRateLimiter(), controller.Register)
	auth.Post("/login", middleware.LoginRateLimiter(), controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *notify.Hub, dispatcher *notify.Dispatcher) {
	userController := controller.NewUserController(db, log.New(os.Stdout, "USER: ", log.LstdFlags))
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, dispatcher, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	commentController := controller.NewCommentController(db, dispatcher, log.New(os.Stdout, "COMMENT: ", log.LstdFlags))
	fileController := controller.NewFileController(db, dispatcher, log.New(os.Stdout, "FILE: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(db, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	wsLogger := log.New(os.Stdout, "WS: ", log.LstdFlags)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// User routes
	user := api.Group("/users")
	user.Get("/", userController.GetUsers)
	user.Post("/", middleware.RequireRoles(models.RoleSuperAdmin), userController.CreateUser)
	user.Patch("/availability", userController.UpdateAvailability)
	user.Get("/:id", userController.GetUser)
	user.Put("/:id", middleware.RequireRoles(models.RoleSuperAdmin), userController.UpdateUser)
	user.Delete("/:id", middleware.RequireRoles(models.RoleSuperAdmin), userController.DeleteUser)

	// Team routes
	team := api.Group("/teams")
	team.Get("/", teamController.GetTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Post("/", middleware.RequireRoles(models.RoleSuperAdmin), teamController.CreateTeam)
	team.Put("/:id", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleTeamLead), teamController.UpdateTeam)
	team.Delete("/:id", middleware.RequireRoles(models.RoleSuperAdmin), teamController.DeleteTeam)
	team.Put("/:id/lead", middleware.RequireRoles(models.RoleSuperAdmin), teamController.SetTeamLead)
	team.Post("/:id/members", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleTeamLead), teamController.AddMember)
	team.Delete("/:id/members/:userId", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleTeamLead), teamController.RemoveMember)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSales), taskController.CreateTask)
	task.Get("/", taskController.GetTasks)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Patch("/:id/status", taskController.UpdateStatus)
	task.Patch("/:id/assign", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleTeamLead), taskController.AssignTask)
	task.Delete("/:id", middleware.RequireRoles(models.RoleSuperAdmin), taskController.DeleteTask)
	task.Get("/:id/activities", taskController.GetTaskActivities)

	// Comment routes
	task.Post("/:id/comments", commentController.CreateComment)
	task.Get("/:id/comments", commentController.GetComments)

	// File routes
	task.Post("/:id/files", fileController.UploadFile)
	task.Get("/:id/files", fileController.GetFiles)
	api.Get("/files/:id/download", fileController.DownloadFile)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetNotifications)
	notification.Get("/unread-count", notificationController.GetUnreadCount)
	notification.Patch("/mark-all-read", notificationController.MarkAllRead)
	notification.Patch("/:id/read", notificationController.MarkRead)

	// WebSocket route for the notification relay. Mounted outside the
	// guarded prefix: browsers cannot send an Authorization header on an
	// upgrade, so the first frame must authenticate with a JWT instead.
	app.Get("/ws/notifications", websocket.New(controller.HandleNotificationWS(hub, wsLogger)))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *notify.Hub, dispatcher *notify.Dispatcher) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app)
	SetupAPIRoutes(app, db, hub, dispatcher)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
