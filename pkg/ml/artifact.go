package ml

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/arrivo/arrivo/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModelArtifact is an immutable trained model plus the metadata needed to
// serve it safely: the feature schema it was trained against, its holdout
// error and the newest data timestamp it reflects.
type ModelArtifact struct {
	PrimaryIdentifier string `groups:"basic"`

	SchemaVersion string    `groups:"basic"`
	TrainedAt     time.Time `groups:"basic"`

	// DataHighWaterMark is the newest ping timestamp reflected in the
	// training data, used to judge staleness after a restart
	DataHighWaterMark time.Time `groups:"basic"`

	ValidationMAE float64 `groups:"basic"`
	TrainingRows  int     `groups:"basic"`

	SerializedParameters []byte `groups:"internal"`
}

// Model deserialises the regressor parameters
func (a *ModelArtifact) Model() (*GBTRegressor, error) {
	var model *GBTRegressor
	if err := json.Unmarshal(a.SerializedParameters, &model); err != nil {
		return nil, err
	}

	return model, nil
}

// ArtifactStore publishes complete artifacts and hands out the current one.
// Current is lock-free so prediction requests never wait on an in-flight
// training run.
type ArtifactStore interface {
	Publish(ctx context.Context, artifact *ModelArtifact) error
	Current() *ModelArtifact
}

// MemoryArtifactStore keeps the current artifact behind an atomic pointer
type MemoryArtifactStore struct {
	current atomic.Pointer[ModelArtifact]
}

func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{}
}

func (s *MemoryArtifactStore) Publish(ctx context.Context, artifact *ModelArtifact) error {
	s.current.Store(artifact)

	return nil
}

func (s *MemoryArtifactStore) Current() *ModelArtifact {
	return s.current.Load()
}

// MongoArtifactStore persists every artifact as a complete document and only
// swaps the in-process pointer once the write succeeded, so a reader can
// never observe a partially written model
type MongoArtifactStore struct {
	current atomic.Pointer[ModelArtifact]
}

func NewMongoArtifactStore() *MongoArtifactStore {
	return &MongoArtifactStore{}
}

// Load restores the newest persisted artifact, usually on process start
func (s *MongoArtifactStore) Load(ctx context.Context) error {
	artifactsCollection := database.GetCollection("model_artifacts")

	opts := options.FindOne().SetSort(bson.D{{Key: "trainedat", Value: -1}})

	var artifact *ModelArtifact
	err := artifactsCollection.FindOne(ctx, bson.M{}, opts).Decode(&artifact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	s.current.Store(artifact)

	return nil
}

func (s *MongoArtifactStore) Publish(ctx context.Context, artifact *ModelArtifact) error {
	artifactsCollection := database.GetCollection("model_artifacts")

	if _, err := artifactsCollection.InsertOne(ctx, artifact); err != nil {
		return err
	}

	s.current.Store(artifact)

	return nil
}

func (s *MongoArtifactStore) Current() *ModelArtifact {
	return s.current.Load()
}
