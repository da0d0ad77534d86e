package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/repositories"
)

type ModelHandler struct {
	repository *repositories.Model
}

func NewModelHandler(repository *repositories.Model) *ModelHandler {
	return &ModelHandler{repository: repository}
}

func (h *ModelHandler) ListModels(c *fiber.Ctx) error {
	query := c.Query("query")

	var (
		records []models.Model
		err     error
	)
	if query == "" {
		records, err = h.repository.All()
	} else {
		records, err = h.repository.Search(query)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error loading models",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Models loaded",
		"data":    records,
	})
}

func (h *ModelHandler) CreateModel(c *fiber.Ctx) error {
	var record models.Model
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"data":    nil,
		})
	}

	if record.Name == "" || record.Width <= 0 || record.Height <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "name, width and height are required",
			"data":    nil,
		})
	}

	created, err := h.repository.FindOrCreate(record.Name, record)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error saving to database",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Model saved",
		"data":    created,
	})
}
