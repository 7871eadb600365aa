package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter собирает fiber-приложение со всеми маршрутами сервиса
func NewRouter(advisories AdvisoryService, schedules ScheduleService, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "advisory-service",
		ErrorHandler:          ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "advisory-service"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	advisoryHandler := NewAdvisoryHandler(advisories)
	scheduleHandler := NewScheduleHandler(schedules)

	api := app.Group("/api")

	advisoryRoutes := api.Group("/advisories")
	advisoryRoutes.Post("/", advisoryHandler.Create)
	advisoryRoutes.Get("/all", advisoryHandler.ListAll)
	advisoryRoutes.Get("/programmer/:id", advisoryHandler.ListByProgrammer)
	advisoryRoutes.Get("/user/:id", advisoryHandler.ListByUser)
	advisoryRoutes.Get("/stats/programmer/:id", advisoryHandler.ProgrammerStats)
	advisoryRoutes.Get("/stats/user/:id", advisoryHandler.UserStats)
	advisoryRoutes.Put("/:id/status", advisoryHandler.UpdateStatus)
	advisoryRoutes.Delete("/:id", advisoryHandler.Delete)

	scheduleRoutes := api.Group("/schedules")
	scheduleRoutes.Post("/", scheduleHandler.Create)
	scheduleRoutes.Get("/", scheduleHandler.ListAll)
	scheduleRoutes.Get("/programmer/:programmerId", scheduleHandler.ListAvailable)
	scheduleRoutes.Delete("/:id", scheduleHandler.Delete)

	return app
}
