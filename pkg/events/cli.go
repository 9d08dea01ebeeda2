package events

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Provides the events runner",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run events server",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartConsumers()

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
				Name:  "test-event",
				Usage: "generate a test event",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					arrivalEvent := transit.ArrivalEvent{
						PrimaryIdentifier: "test-arrival",
						VehicleRef:        "bus-test",
						StopRef:           "stop-test",
						ArrivalTime:       time.Now(),
					}

					return PublishEvent(EventTypeArrivalDetected, arrivalEvent)
				},
			},
		},
	}
}
