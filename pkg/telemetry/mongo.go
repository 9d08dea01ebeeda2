package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists pings in the pings collection
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (s *MongoStore) RecordPing(ctx context.Context, ping *transit.Ping) error {
	pingsCollection := database.GetCollection("pings")
	_, err := pingsCollection.InsertOne(ctx, ping)

	return err
}

func (s *MongoStore) LatestPing(ctx context.Context, vehicleRef string, asOf time.Time) (*transit.Ping, error) {
	return s.findOne(ctx, bson.M{
		"vehicleref": vehicleRef,
		"recordedat": bson.M{"$lte": asOf},
	})
}

func (s *MongoStore) PingBefore(ctx context.Context, vehicleRef string, before time.Time) (*transit.Ping, error) {
	return s.findOne(ctx, bson.M{
		"vehicleref": vehicleRef,
		"recordedat": bson.M{"$lt": before},
	})
}

func (s *MongoStore) findOne(ctx context.Context, query bson.M) (*transit.Ping, error) {
	pingsCollection := database.GetCollection("pings")

	opts := options.FindOne().SetSort(bson.D{{Key: "recordedat", Value: -1}})

	var ping *transit.Ping
	err := pingsCollection.FindOne(ctx, query, opts).Decode(&ping)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ping, nil
}

func (s *MongoStore) RecentPings(ctx context.Context, vehicleRef string, limit int64) ([]*transit.Ping, error) {
	pingsCollection := database.GetCollection("pings")

	opts := options.Find().
		SetSort(bson.D{{Key: "recordedat", Value: -1}}).
		SetLimit(limit)

	cursor, err := pingsCollection.Find(ctx, bson.M{"vehicleref": vehicleRef}, opts)
	if err != nil {
		return nil, err
	}

	var pings []*transit.Ping
	if err := cursor.All(ctx, &pings); err != nil {
		return nil, err
	}

	return pings, nil
}

func (s *MongoStore) HighWaterMark(ctx context.Context) (time.Time, error) {
	pingsCollection := database.GetCollection("pings")

	opts := options.FindOne().SetSort(bson.D{{Key: "recordedat", Value: -1}})

	var ping *transit.Ping
	err := pingsCollection.FindOne(ctx, bson.M{}, opts).Decode(&ping)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	return ping.RecordedAt, nil
}
