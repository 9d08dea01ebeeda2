package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func StopsRouter(router fiber.Router) {
	router.Get("/", listStops)
	router.Get("/:identifier", getStop)
}

func listStops(c *fiber.Ctx) error {
	destinationsOnly := c.Query("destinations_only", "false") == "true"

	stops, err := dependencies.StopRepository.DetectionCandidates(c.Context(), destinationsOnly)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query stops",
		})
	}

	stopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, stops)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Stops",
		})
	}

	return c.JSON(stopsReduced)
}

func getStop(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	stop, err := dependencies.StopRepository.Stop(c.Context(), identifier)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query stop",
		})
	}

	if stop == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	stopReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, stop)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Stop",
		})
	}

	return c.JSON(stopReduced)
}
