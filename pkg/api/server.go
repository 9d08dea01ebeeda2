package api

import (
	"github.com/arrivo/arrivo/pkg/api/routes"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.TelemetryRouter(group.Group("/telemetry"))
	routes.SnapshotsRouter(group.Group("/snapshots"))
	routes.VehiclesRouter(group.Group("/vehicles"))
	routes.StopsRouter(group.Group("/stops"))
	routes.ModelRouter(group.Group("/model"))

	return webApp.Listen(listen)
}
