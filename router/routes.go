package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	handler "github.com/perchdisplay/perch/handlers"
)

func SetupRoutes(
	app *fiber.App,
	screensHandler *handler.ScreenHandler,
	modelsHandler *handler.ModelHandler,
	devicesHandler *handler.DeviceHandler,
) {
	api := app.Group("/api", logger.New())

	// Screens
	screensGroup := api.Group("/screens")
	screensGroup.Get("/", screensHandler.ListScreens)
	screensGroup.Get("/:id", screensHandler.GetScreen)
	screensGroup.Post("/", screensHandler.CreateScreen)
	screensGroup.Delete("/:id", screensHandler.DeleteScreen)

	// Models
	modelsGroup := api.Group("/models")
	modelsGroup.Get("/", modelsHandler.ListModels)
	modelsGroup.Post("/", modelsHandler.CreateModel)

	// Devices
	devicesGroup := api.Group("/devices")
	devicesGroup.Get("/", devicesHandler.ListDevices)
	devicesGroup.Post("/", devicesHandler.UpsertDevice)
	devicesGroup.Post("/:id/errors", devicesHandler.ReportFailure)
}
