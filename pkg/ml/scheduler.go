package ml

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
)

// Scheduler decides when the published model is stale and owns the single
// background retraining worker. Any number of new-data notifications while a
// run is active coalesce into at most one follow-up run.
type Scheduler struct {
	config TrainerConfig

	builder        *DatasetBuilder
	telemetryStore telemetry.Store
	artifactStore  ArtifactStore

	running atomic.Bool
	pending atomic.Bool

	mutex       sync.Mutex
	lastTrained time.Time
}

func NewScheduler(config TrainerConfig, builder *DatasetBuilder, telemetryStore telemetry.Store, artifactStore ArtifactStore) *Scheduler {
	scheduler := &Scheduler{
		config:         config,
		builder:        builder,
		telemetryStore: telemetryStore,
		artifactStore:  artifactStore,
	}

	// Recover the high-water mark from the published artifact so a restart
	// doesn't immediately retrain on data it has already seen
	if artifact := artifactStore.Current(); artifact != nil {
		scheduler.lastTrained = artifact.DataHighWaterMark
	}

	return scheduler
}

// NotifyNewData signals that newer telemetry or arrivals exist. Safe to call
// from any goroutine at any rate; it never blocks on training.
func (s *Scheduler) NotifyNewData() {
	s.pending.Store(true)
	s.maybeStart()
}

func (s *Scheduler) maybeStart() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	go s.run()
}

func (s *Scheduler) run() {
	defer func() {
		s.running.Store(false)

		// A notification may have landed between the last pending check and
		// releasing the running flag
		if s.pending.Load() {
			s.maybeStart()
		}
	}()

	for s.pending.Swap(false) {
		s.trainOnce(context.Background())
	}
}

func (s *Scheduler) trainOnce(ctx context.Context) {
	highWaterMark, err := s.telemetryStore.HighWaterMark(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read telemetry high-water mark")
		return
	}

	s.mutex.Lock()
	stale := highWaterMark.After(s.lastTrained)
	s.mutex.Unlock()

	if !stale {
		return
	}

	dataset, err := s.builder.Build(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build training dataset")
		return
	}

	artifact, err := Train(s.config, dataset, highWaterMark)
	if errors.Is(err, transit.ErrInsufficientData) {
		log.Warn().Err(err).Msg("Skipping retraining")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Training run failed")
		return
	}

	if err := s.artifactStore.Publish(ctx, artifact); err != nil {
		log.Error().Err(err).Msg("Failed to publish model artifact")
		return
	}

	s.mutex.Lock()
	s.lastTrained = highWaterMark
	s.mutex.Unlock()

	log.Info().
		Str("artifact", artifact.PrimaryIdentifier).
		Float64("validationMAE", artifact.ValidationMAE).
		Int("rows", artifact.TrainingRows).
		Msg("Published new model artifact")
}

// LastTrained is the newest data timestamp reflected in the published model
func (s *Scheduler) LastTrained() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.lastTrained
}

// Running reports whether a retraining run is currently in flight
func (s *Scheduler) Running() bool {
	return s.running.Load()
}
