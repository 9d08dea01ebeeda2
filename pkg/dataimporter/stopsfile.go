package dataimporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// StopsFile is a YAML document describing a set of stops to load
type StopsFile struct {
	Identifier string `yaml:"identifier"`
	Provider   string `yaml:"provider"`

	Stops []StopRecord `yaml:"stops"`
}

type StopRecord struct {
	Identifier string `yaml:"identifier"`
	Name       string `yaml:"name"`

	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	IsDestination bool `yaml:"is_destination"`
}

// ImportStopsFile loads every stop in the file into the stops collection,
// inserting new stops and replacing existing ones
func ImportStopsFile(path string) error {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(fileBytes))

	imported := 0

	for {
		var stopsFile StopsFile
		if decoder.Decode(&stopsFile) != nil {
			break
		}

		for _, record := range stopsFile.Stops {
			stop, err := record.ToStop(stopsFile)
			if err != nil {
				log.Error().Err(err).Str("identifier", record.Identifier).Msg("Skipping invalid stop record")
				continue
			}

			if err := stops.Upsert(context.Background(), stop); err != nil {
				return err
			}

			imported += 1
		}
	}

	log.Info().Int("stops", imported).Str("path", path).Msg("Imported stops dataset")

	return nil
}

func (r *StopRecord) ToStop(file StopsFile) (*transit.Stop, error) {
	if r.Identifier == "" {
		return nil, fmt.Errorf("%w: stop record missing identifier", transit.ErrInvalidInput)
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return nil, fmt.Errorf("%w: stop %s co-ordinates out of range", transit.ErrInvalidInput, r.Identifier)
	}

	now := time.Now().Format(time.RFC3339)

	return &transit.Stop{
		PrimaryIdentifier: r.Identifier,
		PrimaryName:       r.Name,

		Location: transit.NewLocation(r.Longitude, r.Latitude),

		IsDestination: r.IsDestination,

		CreationDateTime:     now,
		ModificationDateTime: now,

		DataSource: &transit.DataSource{
			OriginalFormat: "yaml",
			Provider:       file.Provider,
			Dataset:        file.Identifier,
		},
	}, nil
}
