package routes

import (
	"time"

	"github.com/arrivo/arrivo/pkg/realtime"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

func TelemetryRouter(router fiber.Router) {
	router.Post("/", recordTelemetry)
}

type telemetryRequest struct {
	VehicleRef string  `json:"vehicle_ref"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`

	RecordedAt time.Time `json:"recorded_at"`
}

func recordTelemetry(c *fiber.Ctx) error {
	var request telemetryRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Body must be a valid telemetry document",
		})
	}

	if request.RecordedAt.IsZero() {
		request.RecordedAt = time.Now()
	}

	ping := &transit.Ping{
		VehicleRef: request.VehicleRef,
		Location:   transit.NewLocation(request.Longitude, request.Latitude),
		RecordedAt: request.RecordedAt,
	}

	if err := ping.Validate(); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	locationEvent := &realtime.VehicleLocationEvent{
		VehicleRef: ping.VehicleRef,
		Location:   *ping.Location,
		RecordedAt: ping.RecordedAt,

		CreationDateTime: time.Now(),
		DataSource: &transit.DataSource{
			OriginalFormat: "json",
			Provider:       "api",
		},
	}

	if err := realtime.PublishLocationEvent(locationEvent); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to queue telemetry for processing",
		})
	}

	c.SendStatus(fiber.StatusAccepted)
	return c.JSON(fiber.Map{
		"status": "accepted",
	})
}
