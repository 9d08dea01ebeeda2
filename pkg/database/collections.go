package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createTelemetryIndexes()
	createStopsIndexes()
	createArrivalsIndexes()
	createModelIndexes()
	createSnapshotIndexes()
}

func createTelemetryIndexes() {
	pingsCollection := GetCollection("pings")
	pingsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "vehicleref", Value: 1}, {Key: "recordedat", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "recordedat", Value: -1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := pingsCollection.Indexes().CreateMany(context.Background(), pingsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createStopsIndexes() {
	stopsCollection := GetCollection("stops")
	stopsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
		},
		{
			Keys: bson.D{{Key: "isdestination", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), stopsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createArrivalsIndexes() {
	arrivalsCollection := GetCollection("arrival_events")
	arrivalsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "vehicleref", Value: 1}, {Key: "stopref", Value: 1}, {Key: "arrivaltime", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "arrivaltime", Value: -1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := arrivalsCollection.Indexes().CreateMany(context.Background(), arrivalsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	etaRecordsCollection := GetCollection("eta_records")
	etaRecordsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "vehicleref", Value: 1}, {Key: "recordedat", Value: -1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = etaRecordsCollection.Indexes().CreateMany(context.Background(), etaRecordsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createModelIndexes() {
	artifactsCollection := GetCollection("model_artifacts")
	artifactsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainedat", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "schemaversion", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := artifactsCollection.Indexes().CreateMany(context.Background(), artifactsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createSnapshotIndexes() {
	snapshotsCollection := GetCollection("context_snapshots")
	snapshotsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recordedat", Value: -1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := snapshotsCollection.Indexes().CreateMany(context.Background(), snapshotsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
