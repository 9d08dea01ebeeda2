package arrivals

import (
	"context"
	"time"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (s *MongoStore) RecordArrival(ctx context.Context, event *transit.ArrivalEvent) error {
	arrivalsCollection := database.GetCollection("arrival_events")
	_, err := arrivalsCollection.InsertOne(ctx, event)

	return err
}

func (s *MongoStore) ExistsWithin(ctx context.Context, vehicleRef string, stopRef string, around time.Time, window time.Duration) (bool, error) {
	arrivalsCollection := database.GetCollection("arrival_events")

	count, err := arrivalsCollection.CountDocuments(ctx, bson.M{
		"vehicleref": vehicleRef,
		"stopref":    stopRef,
		"arrivaltime": bson.M{
			"$gte": around.Add(-window),
			"$lte": around.Add(window),
		},
	})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *MongoStore) ArrivalsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ArrivalEvent, error) {
	arrivalsCollection := database.GetCollection("arrival_events")

	query := bson.M{"vehicleref": vehicleRef}
	if !from.IsZero() || !to.IsZero() {
		timeQuery := bson.M{}
		if !from.IsZero() {
			timeQuery["$gte"] = from
		}
		if !to.IsZero() {
			timeQuery["$lte"] = to
		}
		query["arrivaltime"] = timeQuery
	}

	opts := options.Find().SetSort(bson.D{{Key: "arrivaltime", Value: -1}})

	cursor, err := arrivalsCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var events []*transit.ArrivalEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (s *MongoStore) AllArrivals(ctx context.Context) ([]*transit.ArrivalEvent, error) {
	arrivalsCollection := database.GetCollection("arrival_events")

	cursor, err := arrivalsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var events []*transit.ArrivalEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
