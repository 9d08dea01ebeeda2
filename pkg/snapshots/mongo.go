package snapshots

import (
	"context"
	"errors"
	"time"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProvider reads externally ingested snapshots from the
// context_snapshots collection
type MongoProvider struct{}

func NewMongoProvider() *MongoProvider {
	return &MongoProvider{}
}

func (p *MongoProvider) LatestSnapshot(ctx context.Context, location *transit.Location, atOrBefore time.Time) *transit.ContextSnapshot {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	snapshotsCollection := database.GetCollection("context_snapshots")

	opts := options.FindOne().SetSort(bson.D{{Key: "recordedat", Value: -1}})

	var snapshot *transit.ContextSnapshot
	err := snapshotsCollection.FindOne(ctx, bson.M{"recordedat": bson.M{"$lte": atOrBefore}}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Context snapshot lookup failed")
		return nil
	}

	return snapshot
}

// RecordSnapshot appends an externally supplied snapshot
func RecordSnapshot(ctx context.Context, snapshot *transit.ContextSnapshot) error {
	snapshotsCollection := database.GetCollection("context_snapshots")
	_, err := snapshotsCollection.InsertOne(ctx, snapshot)

	return err
}
