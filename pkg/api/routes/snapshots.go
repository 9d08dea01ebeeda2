package routes

import (
	"time"

	"github.com/arrivo/arrivo/pkg/snapshots"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

func SnapshotsRouter(router fiber.Router) {
	router.Post("/", recordSnapshot)
}

type snapshotRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	TemperatureC    *float64 `json:"temp_c"`
	PrecipitationMM float64  `json:"precip_mm"`
	TrafficLevel    *float64 `json:"traffic_level"`

	RecordedAt time.Time `json:"recorded_at"`
}

func recordSnapshot(c *fiber.Ctx) error {
	var request snapshotRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Body must be a valid context snapshot document",
		})
	}

	if request.RecordedAt.IsZero() {
		request.RecordedAt = time.Now()
	}

	snapshot := &transit.ContextSnapshot{
		RecordedAt: request.RecordedAt,

		TemperatureC:    request.TemperatureC,
		PrecipitationMM: request.PrecipitationMM,
		TrafficLevel:    request.TrafficLevel,
	}

	if request.Latitude != nil && request.Longitude != nil {
		snapshot.Location = transit.NewLocation(*request.Longitude, *request.Latitude)
	}

	if err := snapshots.RecordSnapshot(c.Context(), snapshot); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to record context snapshot",
		})
	}

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(fiber.Map{
		"status": "created",
	})
}
