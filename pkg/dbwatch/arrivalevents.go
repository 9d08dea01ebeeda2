package dbwatch

import (
	"context"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/events"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ArrivalEventsWatch raises an event for every arrival event inserted into
// the database, regardless of which process inserted it
type ArrivalEventsWatch struct{}

func NewArrivalEventsWatch() *ArrivalEventsWatch {
	return &ArrivalEventsWatch{}
}

func (w *ArrivalEventsWatch) Run() {
	log.Info().Msg("Starting dbwatch on collection arrival_events")
	collection := database.GetCollection("arrival_events")
	matchPipeline := bson.D{
		{
			Key: "$match", Value: bson.D{
				{Key: "operationType", Value: "insert"},
			},
		},
	}
	stream, err := collection.Watch(context.Background(), mongo.Pipeline{matchPipeline})
	if err != nil {
		panic(err)
	}

	defer stream.Close(context.Background())

	for stream.Next(context.Background()) {
		var data struct {
			OperationType string               `bson:"operationType"`
			FullDocument  *transit.ArrivalEvent `bson:"fullDocument"`
		}
		if err := stream.Decode(&data); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		if data.OperationType != "insert" {
			continue
		}

		log.Info().Str("id", data.FullDocument.PrimaryIdentifier).Msg("New Arrival Event inserted")

		if err := events.PublishEvent(events.EventTypeArrivalDetected, data.FullDocument); err != nil {
			log.Error().Err(err).Msg("Failed to publish arrival event")
		}
	}
}
