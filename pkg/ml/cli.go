package ml

import (
	"context"
	"errors"
	"fmt"

	"github.com/arrivo/arrivo/pkg/arrivals"
	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/snapshots"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "model",
		Usage: "Manage the ETA model",
		Subcommands: []*cli.Command{
			{
				Name:  "train",
				Usage: "run a single training pass over all recorded arrivals",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					ctx := context.Background()

					telemetryStore := telemetry.NewMongoStore()
					builder := NewDatasetBuilder(telemetryStore, arrivals.NewMongoStore(), stops.NewMongoRepository(), snapshots.NewMongoProvider())

					highWaterMark, err := telemetryStore.HighWaterMark(ctx)
					if err != nil {
						return err
					}

					dataset, err := builder.Build(ctx)
					if err != nil {
						return err
					}

					artifact, err := Train(TrainerConfigFromEnvironment(), dataset, highWaterMark)
					if errors.Is(err, transit.ErrInsufficientData) {
						log.Warn().Err(err).Msg("Not enough data to train")
						return nil
					}
					if err != nil {
						return err
					}

					artifactStore := NewMongoArtifactStore()
					if err := artifactStore.Publish(ctx, artifact); err != nil {
						return err
					}

					log.Info().
						Str("artifact", artifact.PrimaryIdentifier).
						Float64("validationMAE", artifact.ValidationMAE).
						Int("rows", artifact.TrainingRows).
						Msg("Published new model artifact")

					return nil
				},
			},
			{
				Name:  "current",
				Usage: "show the currently published model artifact",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					artifactStore := NewMongoArtifactStore()
					if err := artifactStore.Load(context.Background()); err != nil {
						return err
					}

					artifact := artifactStore.Current()
					if artifact == nil {
						fmt.Println("No model has been trained yet")
						return nil
					}

					pretty.Println(artifact.PrimaryIdentifier, artifact.SchemaVersion, artifact.TrainedAt, artifact.ValidationMAE, artifact.TrainingRows)

					return nil
				},
			},
		},
	}
}
