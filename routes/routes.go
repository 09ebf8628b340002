package routes

import (
	"log"
	"os"

	controller "leadboard/controllers"
	"leadboard/middleware"
	"leadboard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *utils.EventHub) {
	// Initialize controllers with their respective loggers
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags), hub)
	activityController := controller.NewActivityController(db, log.New(os.Stdout, "ACTIVITY: ", log.LstdFlags), hub)
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	unitController := controller.NewUnitController(db, log.New(os.Stdout, "UNIT: ", log.LstdFlags), hub)
	userController := controller.NewUserController(db, log.New(os.Stdout, "USER: ", log.LstdFlags))
	enrollmentController := controller.NewEnrollmentController(db, log.New(os.Stdout, "ENROLLMENT: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/activities", dashboardController.GetActivityDashboard)
	dashboard.Get("/leads-stats", dashboardController.GetLeadsStats)
	dashboard.Get("/commercial", dashboardController.GetCommercialStats)

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/board", leadController.GetBoard)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Delete("/:id", leadController.DeleteLead)

	// Pipeline submissions, rate limited per user+lead
	submission := lead.Group("/:id", middleware.SubmissionRateLimiter())
	submission.Post("/attempt", activityController.RecordAttempt)
	submission.Post("/effective-contact", activityController.RecordEffectiveContact)
	submission.Post("/scheduling", activityController.RecordScheduling)
	submission.Post("/attendance", activityController.RecordAttendance)

	// Activity routes
	api.Delete("/activities/:id", activityController.DeleteActivity)

	// Unit routes
	unit := api.Group("/units")
	unit.Post("/", unitController.CreateUnit)
	unit.Get("/", unitController.GetUnits)
	unit.Put("/:id", unitController.UpdateUnit)
	unit.Delete("/:id", middleware.AdminOnly(), unitController.DeleteUnit)

	// User routes
	users := api.Group("/users")
	users.Get("/", userController.GetUsers)
	users.Post("/", middleware.AdminOnly(), userController.CreateUser)
	users.Delete("/:id", middleware.AdminOnly(), userController.DeactivateUser)

	// Enrollment routes
	api.Get("/enrollments", enrollmentController.GetEnrollments)
	api.Get("/sales", enrollmentController.GetSales)

	// WebSocket route for board change events
	app.Get("/api/v1/board/events", websocket.New(controller.HandleBoardEventsWS(hub)))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *utils.EventHub) {
	// Initialize the Google OAuth provider
	controller.InitGoogleOAuth()

	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, hub)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
