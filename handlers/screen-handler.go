package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/repositories"
	"github.com/perchdisplay/perch/screens"
	"github.com/perchdisplay/perch/storage"
)

type ScreenHandler struct {
	repository *repositories.Screen
	profiles   *repositories.Model
	pipeline   *screens.Pipeline
	store      storage.Store
}

func NewScreenHandler(
	repository *repositories.Screen,
	profiles *repositories.Model,
	pipeline *screens.Pipeline,
	store storage.Store,
) *ScreenHandler {
	return &ScreenHandler{repository: repository, profiles: profiles, pipeline: pipeline, store: store}
}

func (h *ScreenHandler) ListScreens(c *fiber.Ctx) error {
	query := c.Query("query")

	var (
		records []models.Screen
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
			"message": "Error loading screens",
			"data":    nil,
		})
	}

	payload := make([]fiber.Map, 0, len(records))
	for i := range records {
		payload = append(payload, h.screenPayload(&records[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Screens loaded",
		"data":    payload,
	})
}

func (h *ScreenHandler) GetScreen(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid screen id",
			"data":    nil,
		})
	}

	screen, err := h.repository.Find(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error loading screen",
			"data":    nil,
		})
	}
	if screen == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Screen not found",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Screen loaded",
		"data":    h.screenPayload(screen),
	})
}

// CreateScreen ingests an uploaded source image as a named screen. A
// known name replaces that screen's image.
func (h *ScreenHandler) CreateScreen(c *fiber.Ctx) error {
	name := c.FormValue("name")
	label := c.FormValue("label")
	modelID, err := strconv.ParseUint(c.FormValue("model_id"), 10, 64)
	if name == "" || err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "name and model_id are required",
			"data":    nil,
		})
	}

	profile, err := h.profiles.Find(uint(modelID))
	if err != nil || profile == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Unknown model",
			"data":    nil,
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "No file provided",
			"data":    nil,
		})
	}

	source, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error opening the file",
			"data":    nil,
		})
	}
	defer source.Close()

	mold := screens.NewMold(profile, name, label, "")

	screen, err := h.pipeline.Ingest(mold, source)
	if err != nil {
		return c.Status(ingestStatus(err)).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Successfully ingested the screen",
		"data":    h.screenPayload(screen),
	})
}

func (h *ScreenHandler) DeleteScreen(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid screen id",
			"data":    nil,
		})
	}

	if err := h.repository.Delete(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error deleting screen",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Screen deleted",
		"data":    nil,
	})
}

func (h *ScreenHandler) screenPayload(screen *models.Screen) fiber.Map {
	payload := fiber.Map{
		"id":         screen.ID,
		"model_id":   screen.ModelID,
		"name":       screen.Name,
		"label":      screen.Label,
		"created_at": screen.CreatedAt,
		"updated_at": screen.UpdatedAt,
	}

	if attachment := screen.Image(); attachment != nil {
		payload["image"] = fiber.Map{
			"id":            attachment.ID,
			"url":           screen.ImageURI(h.store),
			"download_name": screen.ImageNameDated(),
			"metadata":      attachment.Metadata,
		}
	}

	return payload
}

func ingestStatus(err error) int {
	var conversion *screens.ConversionError
	var validation *models.ValidationError
	var conflict *repositories.NameConflictError

	switch {
	case errors.As(err, &conversion), errors.As(err, &validation):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
