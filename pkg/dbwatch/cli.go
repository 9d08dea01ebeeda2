package dbwatch

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "dbwatch",
		Usage: "Watches the database and raises events",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run dbwatch server",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					log.Info().Msg("Starting dbwatch server")

					arrivalEvents := NewArrivalEventsWatch()
					go arrivalEvents.Run()

					modelArtifacts := NewModelArtifactsWatch()
					go modelArtifacts.Run()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					return nil
				},
			},
		},
	}
}
