package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/perchdisplay/perch/config"
	"github.com/perchdisplay/perch/database"
	handler "github.com/perchdisplay/perch/handlers"
	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/preview"
	"github.com/perchdisplay/perch/repositories"
	"github.com/perchdisplay/perch/router"
	"github.com/perchdisplay/perch/screens"
	"github.com/perchdisplay/perch/storage"
)

func main() {
	db := database.GetDB()

	// Run migrations
	err := database.MigrateModels(&models.Model{}, &models.Screen{}, &models.Device{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	store := buildStore()
	hub := preview.NewHub()

	screenRepository := repositories.NewScreen(db, store, hub)
	modelRepository := repositories.NewModel(db)
	deviceRepository := repositories.NewDevice(db)

	converter := screens.NewConverter()
	pipeline := screens.NewPipeline(converter, screenRepository, store)
	composer := screens.NewComposer(pipeline, converter, screenRepository, modelRepository)

	app := fiber.New(fiber.Config{BodyLimit: 32 * 1024 * 1024})

	app.Get("/hello", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})

	app.Use(preview.Middleware(preview.DefaultPattern, hub))

	router.SetupRoutes(
		app,
		handler.NewScreenHandler(screenRepository, modelRepository, pipeline, store),
		handler.NewModelHandler(modelRepository),
		handler.NewDeviceHandler(deviceRepository, modelRepository, composer),
	)

	// close the database connection
	defer func() {
		hub.Close()

		if err := database.CloseDB(); err != nil {
			fmt.Printf("Error closing the Database connection %v", err)
			log.Fatal(err)
		}
	}()

	port := config.ConfigOr("PORT", "3000")
	fmt.Println("Server is listening at the port " + port)
	log.Fatal(app.Listen(":" + port))
}

// buildStore answers the GCS blob store when a bucket is configured and
// falls back to the in-memory store for local development.
func buildStore() storage.Store {
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		fmt.Println("GCS_BUCKET_NAME not set, using in-memory blob store")
		return storage.NewMemory()
	}

	store, err := storage.NewGCS(context.Background(), bucket)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	return store
}
