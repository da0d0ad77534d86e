package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/repositories"
	"github.com/perchdisplay/perch/screens"
)

type DeviceHandler struct {
	repository *repositories.Device
	profiles   *repositories.Model
	composer   *screens.Composer
}

func NewDeviceHandler(
	repository *repositories.Device,
	profiles *repositories.Model,
	composer *screens.Composer,
) *DeviceHandler {
	return &DeviceHandler{repository: repository, profiles: profiles, composer: composer}
}

func (h *DeviceHandler) ListDevices(c *fiber.Ctx) error {
	records, err := h.repository.All()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error loading devices",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Devices loaded",
		"data":    records,
	})
}

type deviceUpsertRequest struct {
	ModelID    uint   `json:"model_id"`
	FriendlyID string `json:"friendly_id"`
	Label      string `json:"label"`
	MACAddress string `json:"mac_address"`
	APIKey     string `json:"api_key"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// UpsertDevice creates or refreshes the device record keyed by MAC
// address. A missing model_id falls back to the panel-size heuristic.
func (h *DeviceHandler) UpsertDevice(c *fiber.Ctx) error {
	var request deviceUpsertRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"data":    nil,
		})
	}

	if request.MACAddress == "" || request.FriendlyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "mac_address and friendly_id are required",
			"data":    nil,
		})
	}

	modelID := request.ModelID
	if modelID == 0 {
		profile, err := h.profiles.FindByDimensions(request.Width, request.Height)
		if err != nil || profile == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Unknown model",
				"data":    nil,
			})
		}
		modelID = profile.ID
	}

	device := &models.Device{
		ModelID:    modelID,
		FriendlyID: request.FriendlyID,
		Label:      request.Label,
		MACAddress: request.MACAddress,
		APIKey:     request.APIKey,
	}

	saved, err := h.repository.Upsert(device)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error saving to database",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Device saved",
		"data":    saved,
	})
}

type deviceFailureRequest struct {
	Message string `json:"message"`
}

// ReportFailure renders the device's error screen with the reported
// message.
func (h *DeviceHandler) ReportFailure(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid device id",
			"data":    nil,
		})
	}

	device, err := h.repository.Find(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error loading device",
			"data":    nil,
		})
	}
	if device == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Device not found",
			"data":    nil,
		})
	}

	var request deviceFailureRequest
	if err := c.BodyParser(&request); err != nil || request.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "message is required",
			"data":    nil,
		})
	}

	screen, err := h.composer.RenderFailure(device, request.Message)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to render error screen",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Error screen rendered",
		"data": fiber.Map{
			"id":   screen.ID,
			"name": screen.Name,
		},
	})
}
