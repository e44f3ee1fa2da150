package FiberConfig

import (
	"BaiXe/Config"
	"BaiXe/Controllers"
	"BaiXe/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes wires every endpoint onto the app.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *Config.AppConfig, log *logrus.Logger) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db, cfg)
	userController := Controllers.NewUserController(db)
	vehicleController := Controllers.NewVehicleController(db)
	actionController := Controllers.NewActionController(db, log)
	statisticsController := Controllers.NewStatisticsController(db)
	inventoryController := Controllers.NewInventoryController(db)

	// Public API: the kiosk flow needs no credential
	api := app.Group("/api")
	api.Post("/scan", actionController.Scan)
	api.Post("/action", actionController.Action)
	api.Get("/search", userController.Search)
	api.Get("/search-by-plate-suffix", vehicleController.SearchPlateSuffix)

	// Admin panel
	admin := api.Group("/admin")
	admin.Post("/login", authController.Login)

	verified := admin.Group("", middleware.VerifyAdmin(cfg.JWTSecret))
	verified.Post("/add-user", userController.AddUser)
	verified.Put("/update-user/:cccd", userController.UpdateUser)
	verified.Get("/users", userController.ListUsers)
	verified.Delete("/users/:cccd", userController.DeleteUser)

	verified.Get("/vehicles", vehicleController.ListVehicles)
	verified.Get("/vehicles/export", vehicleController.ExportVehicles)
	verified.Get("/search-by-cccd", vehicleController.SearchByCccd)
	verified.Get("/search-license-plate/:lastDigits", vehicleController.SearchPlateSuffix)

	verified.Get("/statistics", statisticsController.Statistics)
	verified.Get("/dashboard-stats", statisticsController.DashboardStats)

	verified.Post("/inventory/start", inventoryController.Start)
	verified.Post("/inventory/check", inventoryController.Check)
	verified.Post("/inventory/end/:sessionId", inventoryController.End)
	verified.Get("/inventory/sessions", inventoryController.Sessions)
	verified.Get("/inventory/session/:sessionId", inventoryController.SessionDetail)
	verified.Get("/inventory/report/:sessionId/export", inventoryController.ExportReport)
	verified.Get("/inventory/search-license-plate/:lastDigits", vehicleController.SearchPlateSuffix)
}

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(db *gorm.DB, cfg *Config.AppConfig, log *logrus.Logger) *fiber.App {
	app := fiber.New()

	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupRoutes(app, db, cfg, log)
	return app
}

// Run starts the server on the configured port.
func Run(db *gorm.DB, cfg *Config.AppConfig, log *logrus.Logger) error {
	app := NewApp(db, cfg, log)
	log.Infof("Server up on port %s", cfg.Port)
	return app.Listen(":" + cfg.Port)
}
