package api

import (
	"context"

	"github.com/arrivo/arrivo/pkg/api/routes"
	"github.com/arrivo/arrivo/pkg/arrivals"
	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/elastic_client"
	"github.com/arrivo/arrivo/pkg/ml"
	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/snapshots"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					telemetryStore := telemetry.NewMongoStore()
					arrivalStore := arrivals.NewMongoStore()
					stopRepository := stops.NewMongoRepository()
					contextProvider := snapshots.NewCachedProvider(snapshots.NewMongoProvider())
					etaRecordStore := ml.NewMongoETARecordStore()

					artifactStore := ml.NewMongoArtifactStore()
					if err := artifactStore.Load(context.Background()); err != nil {
						log.Error().Err(err).Msg("Failed to load current model artifact")
					}

					routes.Setup(routes.Dependencies{
						TelemetryStore: telemetryStore,
						ArrivalStore:   arrivalStore,
						StopRepository: stopRepository,
						ETARecordStore: etaRecordStore,
						ArtifactStore:  artifactStore,

						Predictor: ml.NewPredictor(telemetryStore, stopRepository, contextProvider, artifactStore, etaRecordStore),
					})

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
