package dbwatch

import (
	"context"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/events"
	"github.com/arrivo/arrivo/pkg/ml"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ModelArtifactsWatch raises an event whenever a new model artifact is
// published
type ModelArtifactsWatch struct{}

func NewModelArtifactsWatch() *ModelArtifactsWatch {
	return &ModelArtifactsWatch{}
}

func (w *ModelArtifactsWatch) Run() {
	log.Info().Msg("Starting dbwatch on collection model_artifacts")
	collection := database.GetCollection("model_artifacts")
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
			OperationType string            `bson:"operationType"`
			FullDocument  *ml.ModelArtifact `bson:"fullDocument"`
		}
		if err := stream.Decode(&data); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		if data.OperationType != "insert" {
			continue
		}

		log.Info().Str("id", data.FullDocument.PrimaryIdentifier).Msg("New Model Artifact published")

		// Strip the serialised parameters, subscribers only care about the
		// metadata
		data.FullDocument.SerializedParameters = nil

		if err := events.PublishEvent(events.EventTypeModelPublished, data.FullDocument); err != nil {
			log.Error().Err(err).Msg("Failed to publish model artifact event")
		}
	}
}
