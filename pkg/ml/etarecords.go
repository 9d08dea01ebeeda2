package ml

import (
	"context"
	"sync"
	"time"

	"github.com/arrivo/arrivo/pkg/database"
	"github.com/arrivo/arrivo/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ETARecordStore is the append-only audit trail of served predictions
type ETARecordStore interface {
	RecordETA(ctx context.Context, record *transit.ETARecord) error
	RecordsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ETARecord, error)
}

type MongoETARecordStore struct{}

func NewMongoETARecordStore() *MongoETARecordStore {
	return &MongoETARecordStore{}
}

func (s *MongoETARecordStore) RecordETA(ctx context.Context, record *transit.ETARecord) error {
	etaRecordsCollection := database.GetCollection("eta_records")
	_, err := etaRecordsCollection.InsertOne(ctx, record)

	return err
}

func (s *MongoETARecordStore) RecordsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ETARecord, error) {
	etaRecordsCollection := database.GetCollection("eta_records")

	query := bson.M{"vehicleref": vehicleRef}
	if !from.IsZero() || !to.IsZero() {
		timeQuery := bson.M{}
		if !from.IsZero() {
			timeQuery["$gte"] = from
		}
		if !to.IsZero() {
			timeQuery["$lte"] = to
		}
		query["recordedat"] = timeQuery
	}

	opts := options.Find().SetSort(bson.D{{Key: "recordedat", Value: -1}})

	cursor, err := etaRecordsCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var records []*transit.ETARecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

type MemoryETARecordStore struct {
	mutex   sync.RWMutex
	records []*transit.ETARecord
}

func NewMemoryETARecordStore() *MemoryETARecordStore {
	return &MemoryETARecordStore{}
}

func (s *MemoryETARecordStore) RecordETA(ctx context.Context, record *transit.ETARecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = append(s.records, record)

	return nil
}

func (s *MemoryETARecordStore) RecordsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ETARecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var matched []*transit.ETARecord
	for _, record := range s.records {
		if record.VehicleRef != vehicleRef {
			continue
		}
		if !from.IsZero() && record.RecordedAt.Before(from) {
			continue
		}
		if !to.IsZero() && record.RecordedAt.After(to) {
			continue
		}

		matched = append(matched, record)
	}

	return matched, nil
}
