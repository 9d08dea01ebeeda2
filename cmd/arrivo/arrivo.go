package main

import (
	"os"
	"time"

	"github.com/arrivo/arrivo/pkg/api"
	"github.com/arrivo/arrivo/pkg/dataimporter"
	"github.com/arrivo/arrivo/pkg/dbwatch"
	"github.com/arrivo/arrivo/pkg/events"
	"github.com/arrivo/arrivo/pkg/ml"
	"github.com/arrivo/arrivo/pkg/realtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("ARRIVO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("ARRIVO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "arrivo",
		Description: "Single binary of truth for Arrivo - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			events.RegisterCLI(),
			dbwatch.RegisterCLI(),
			dataimporter.RegisterCLI(),
			ml.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
