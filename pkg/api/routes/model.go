package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func ModelRouter(router fiber.Router) {
	router.Get("/", getCurrentModel)
}

func getCurrentModel(c *fiber.Ctx) error {
	artifact := dependencies.ArtifactStore.Current()

	if artifact == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No model has been trained yet",
		})
	}

	artifactReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, artifact)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Model Artifact",
		})
	}

	return c.JSON(artifactReduced)
}
