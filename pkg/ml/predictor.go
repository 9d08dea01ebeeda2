package ml

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/arrivo/arrivo/pkg/features"
	"github.com/arrivo/arrivo/pkg/snapshots"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
)

// Estimate is a served ETA
type Estimate struct {
	ETAMinutes float64   `groups:"basic"`
	ComputedAt time.Time `groups:"basic"`

	Estimator     string `groups:"basic"`
	SchemaVersion string `groups:"detailed"`
}

// Predictor serves ETAs from the currently published artifact, falling back
// to kinematic extrapolation when no model has been trained yet. It never
// waits on an in-flight retraining run.
type Predictor struct {
	telemetryStore  telemetry.Store
	stopRepository  stops.Repository
	contextProvider snapshots.Provider
	artifactStore   ArtifactStore
	etaRecordStore  ETARecordStore
}

func NewPredictor(telemetryStore telemetry.Store, stopRepository stops.Repository, contextProvider snapshots.Provider, artifactStore ArtifactStore, etaRecordStore ETARecordStore) *Predictor {
	return &Predictor{
		telemetryStore:  telemetryStore,
		stopRepository:  stopRepository,
		contextProvider: contextProvider,
		artifactStore:   artifactStore,
		etaRecordStore:  etaRecordStore,
	}
}

// Predict returns a non-negative ETA in minutes, rounded to two decimals.
// Unavailability is always a typed error: transit.ErrInvalidInput,
// transit.ErrNoData, transit.ErrNoModel, transit.ErrInsufficientData or
// transit.ErrSchemaMismatch.
func (p *Predictor) Predict(ctx context.Context, vehicleRef string, stopRef string, asOf time.Time) (*Estimate, error) {
	stop, err := p.stopRepository.Stop(ctx, stopRef)
	if err != nil {
		return nil, err
	}
	if stop == nil {
		return nil, fmt.Errorf("%w: unknown stop %s", transit.ErrInvalidInput, stopRef)
	}

	ping, err := p.telemetryStore.LatestPing(ctx, vehicleRef, asOf)
	if err != nil {
		return nil, err
	}
	if ping == nil {
		return nil, fmt.Errorf("%w: no ping for vehicle %s", transit.ErrNoData, vehicleRef)
	}

	previousPing, err := p.telemetryStore.PingBefore(ctx, vehicleRef, ping.RecordedAt)
	if err != nil {
		return nil, err
	}

	artifact := p.artifactStore.Current()
	if artifact == nil {
		estimate, err := p.kinematicEstimate(ctx, ping, previousPing, stop)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", transit.ErrNoModel, err)
		}

		return estimate, nil
	}

	snapshot := p.contextProvider.LatestSnapshot(ctx, ping.Location, ping.RecordedAt)

	vector := features.Extract(ping, previousPing, stop, snapshot)

	input, err := vector.ModelInput(artifact.SchemaVersion)
	if err != nil {
		return nil, err
	}

	model, err := artifact.Model()
	if err != nil {
		return nil, fmt.Errorf("%w: artifact parameters unreadable", transit.ErrSchemaMismatch)
	}

	estimate := &Estimate{
		ETAMinutes:    roundMinutes(model.Predict(input)),
		ComputedAt:    time.Now(),
		Estimator:     transit.ETAEstimatorModel,
		SchemaVersion: artifact.SchemaVersion,
	}

	p.audit(ctx, vehicleRef, stopRef, estimate)

	return estimate, nil
}

// kinematicEstimate is the zero-training-data fallback: straight-line
// distance over the most recently observed speed
func (p *Predictor) kinematicEstimate(ctx context.Context, ping *transit.Ping, previousPing *transit.Ping, stop *transit.Stop) (*Estimate, error) {
	if previousPing == nil {
		return nil, fmt.Errorf("%w: need two pings for a kinematic estimate", transit.ErrInsufficientData)
	}

	elapsedSeconds := ping.RecordedAt.Sub(previousPing.RecordedAt).Seconds()
	if elapsedSeconds <= 0 {
		return nil, fmt.Errorf("%w: non-positive elapsed time between pings", transit.ErrInsufficientData)
	}

	speedKmh := (previousPing.Location.Distance(ping.Location) / elapsedSeconds) * 3.6
	if speedKmh <= 0 {
		return nil, fmt.Errorf("%w: vehicle is stationary", transit.ErrInsufficientData)
	}

	distanceKm := ping.Location.Distance(stop.Location) / 1000
	etaMinutes := distanceKm / (speedKmh / 60.0)

	estimate := &Estimate{
		ETAMinutes: roundMinutes(etaMinutes),
		ComputedAt: time.Now(),
		Estimator:  transit.ETAEstimatorKinematic,
	}

	p.audit(ctx, ping.VehicleRef, stop.PrimaryIdentifier, estimate)

	return estimate, nil
}

func (p *Predictor) audit(ctx context.Context, vehicleRef string, stopRef string, estimate *Estimate) {
	record := &transit.ETARecord{
		VehicleRef: vehicleRef,
		StopRef:    stopRef,

		PredictedMinutes: estimate.ETAMinutes,
		Estimator:        estimate.Estimator,
		SchemaVersion:    estimate.SchemaVersion,

		RecordedAt: estimate.ComputedAt,
	}

	if err := p.etaRecordStore.RecordETA(ctx, record); err != nil {
		log.Error().Err(err).Str("vehicle", vehicleRef).Msg("Failed to record ETA audit entry")
	}
}

// roundMinutes clamps at zero then rounds to two decimal places
func roundMinutes(minutes float64) float64 {
	if minutes < 0 {
		minutes = 0
	}

	return math.Round(minutes*100) / 100
}
