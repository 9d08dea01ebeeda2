package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func VehiclesRouter(router fiber.Router) {
	router.Get("/:identifier/eta", getVehicleETA)
	router.Get("/:identifier/pings", getVehiclePings)
	router.Get("/:identifier/arrivals", getVehicleArrivals)
	router.Get("/:identifier/eta_records", getVehicleETARecords)
}

func getVehiclePings(c *fiber.Ctx) error {
	vehicleRef := c.Params("identifier")

	count, err := strconv.ParseInt(c.Query("count", "25"), 10, 64)
	if err != nil || count < 1 || count > 500 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be between 1 and 500",
		})
	}

	pings, err := dependencies.TelemetryStore.RecentPings(c.Context(), vehicleRef, count)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query pings",
		})
	}

	pingsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, pings)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Pings",
		})
	}

	return c.JSON(pingsReduced)
}

func getVehicleETA(c *fiber.Ctx) error {
	vehicleRef := c.Params("identifier")
	stopRef := c.Query("stop")

	if stopRef == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A stop must be provided",
		})
	}

	asOf := time.Now()
	if datetimeQuery := c.Query("datetime"); datetimeQuery != "" {
		parsed, err := time.Parse(time.RFC3339, datetimeQuery)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter datetime should be an RFC3339/ISO8601 datetime",
			})
		}
		asOf = parsed
	}

	estimate, err := dependencies.Predictor.Predict(c.Context(), vehicleRef, stopRef, asOf)
	if err != nil {
		return unavailableResponse(c, err)
	}

	estimateReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, estimate)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Estimate",
		})
	}

	return c.JSON(estimateReduced)
}

// unavailableResponse turns a typed prediction failure into a structured
// response the caller can branch on, rather than a bare 500
func unavailableResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusServiceUnavailable
	reason := "unavailable"

	switch {
	case errors.Is(err, transit.ErrInvalidInput):
		status = fiber.StatusBadRequest
		reason = "invalid_input"
	case errors.Is(err, transit.ErrNoData):
		status = fiber.StatusNotFound
		reason = "no_data"
	case errors.Is(err, transit.ErrNoModel):
		reason = "no_model"
	case errors.Is(err, transit.ErrInsufficientData):
		reason = "insufficient_data"
	case errors.Is(err, transit.ErrSchemaMismatch):
		reason = "schema_mismatch"
	}

	c.SendStatus(status)
	return c.JSON(fiber.Map{
		"reason": reason,
		"error":  err.Error(),
	})
}

func getVehicleArrivals(c *fiber.Ctx) error {
	vehicleRef := c.Params("identifier")

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	arrivalEvents, err := dependencies.ArrivalStore.ArrivalsForVehicle(c.Context(), vehicleRef, from, to)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query arrival events",
		})
	}

	arrivalEventsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, arrivalEvents)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Arrival Events",
		})
	}

	return c.JSON(arrivalEventsReduced)
}

func getVehicleETARecords(c *fiber.Ctx) error {
	vehicleRef := c.Params("identifier")

	from, to, err := parseTimeRange(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	records, err := dependencies.ETARecordStore.RecordsForVehicle(c.Context(), vehicleRef, from, to)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query ETA records",
		})
	}

	recordsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, records)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce ETA Records",
		})
	}

	return c.JSON(recordsReduced)
}

func parseTimeRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from time.Time
	var to time.Time

	if fromQuery := c.Query("datetime_from"); fromQuery != "" {
		parsed, err := time.Parse(time.RFC3339, fromQuery)
		if err != nil {
			return from, to, errors.New("Parameter datetime_from should be an RFC3339/ISO8601 datetime")
		}
		from = parsed
	}

	if toQuery := c.Query("datetime_to"); toQuery != "" {
		parsed, err := time.Parse(time.RFC3339, toQuery)
		if err != nil {
			return from, to, errors.New("Parameter datetime_to should be an RFC3339/ISO8601 datetime")
		}
		to = parsed
	}

	return from, to, nil
}
