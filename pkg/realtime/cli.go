package realtime

import (
	"context"
	"os"
	"os/signal"
	"syscall"

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
		Name:  "realtime",
		Usage: "Realtime engine ingests location events, detects arrivals and keeps the ETA model fresh",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the realtime engine",
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

					detector := arrivals.NewDetector(arrivals.DetectorConfigFromEnvironment(), stopRepository, arrivalStore)

					artifactStore := ml.NewMongoArtifactStore()
					if err := artifactStore.Load(context.Background()); err != nil {
						log.Error().Err(err).Msg("Failed to load current model artifact")
					}

					builder := ml.NewDatasetBuilder(telemetryStore, arrivalStore, stopRepository, contextProvider)
					scheduler := ml.NewScheduler(ml.TrainerConfigFromEnvironment(), builder, telemetryStore, artifactStore)

					StartConsumers(&Pipeline{
						TelemetryStore: telemetryStore,
						Detector:       detector,
						Scheduler:      scheduler,
					})

					go StartStatsServer()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "run the queue cleaner for the telemetry queue",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartCleaner()

					return nil
				},
			},
		},
	}
}
