package stops

import (
	"context"
	"errors"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct{}

func NewMongoRepository() *MongoRepository {
	return &MongoRepository{}
}

func (r *MongoRepository) Stop(ctx context.Context, identifier string) (*transit.Stop, error) {
	stopsCollection := database.GetCollection("stops")

	var stop *transit.Stop
	err := stopsCollection.FindOne(ctx, bson.M{"primaryidentifier": identifier}).Decode(&stop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return stop, nil
}

func (r *MongoRepository) DetectionCandidates(ctx context.Context, destinationsOnly bool) ([]*transit.Stop, error) {
	stopsCollection := database.GetCollection("stops")

	query := bson.M{}
	if destinationsOnly {
		query["isdestination"] = true
	}

	cursor, err := stopsCollection.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	var candidates []*transit.Stop
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}

	return candidates, nil
}

// Upsert inserts or replaces a stop keyed on its primary identifier
func Upsert(ctx context.Context, stop *transit.Stop) error {
	stopsCollection := database.GetCollection("stops")

	filter := bson.M{"primaryidentifier": stop.PrimaryIdentifier}
	update := bson.M{"$set": stop}

	opts := options.Update().SetUpsert(true)
	_, err := stopsCollection.UpdateOne(ctx, filter, update, opts)

	return err
}
