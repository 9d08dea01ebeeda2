package ml

import (
	"context"

	"github.com/arrivo/arrivo/pkg/arrivals"
	"github.com/arrivo/arrivo/pkg/features"
	"github.com/arrivo/arrivo/pkg/snapshots"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

// TrainingRow pairs a feature vector with its minutes-to-arrival label
type TrainingRow struct {
	Vector       *features.Vector
	LabelMinutes float64
}

// DatasetBuilder joins confirmed arrivals back to the telemetry that
// preceded them
type DatasetBuilder struct {
	telemetryStore  telemetry.Store
	arrivalStore    arrivals.Store
	stopRepository  stops.Repository
	contextProvider snapshots.Provider
}

func NewDatasetBuilder(telemetryStore telemetry.Store, arrivalStore arrivals.Store, stopRepository stops.Repository, contextProvider snapshots.Provider) *DatasetBuilder {
	return &DatasetBuilder{
		telemetryStore:  telemetryStore,
		arrivalStore:    arrivalStore,
		stopRepository:  stopRepository,
		contextProvider: contextProvider,
	}
}

// Build produces one candidate row per arrival event: the features of the
// most recent ping at or before the arrival, labelled with the minutes
// between them. Detector-created events carry the timestamp of the ping
// that confirmed them, so when the join lands exactly on the arrival the
// builder steps back to the preceding ping instead. Rows with non-positive
// labels or incomplete required features are dropped, and a failure on one
// event never aborts the rest. An empty result is valid and simply means
// there is nothing to train on.
func (b *DatasetBuilder) Build(ctx context.Context) ([]TrainingRow, error) {
	events, err := b.arrivalStore.AllArrivals(ctx)
	if err != nil {
		return nil, err
	}

	var dataset []TrainingRow

	for _, event := range events {
		ping, err := b.telemetryStore.LatestPing(ctx, event.VehicleRef, event.ArrivalTime)
		if err != nil {
			log.Error().Err(err).Str("vehicle", event.VehicleRef).Msg("Failed to resolve ping for arrival")
			continue
		}
		if ping != nil && !ping.RecordedAt.Before(event.ArrivalTime) {
			ping, err = b.telemetryStore.PingBefore(ctx, event.VehicleRef, event.ArrivalTime)
			if err != nil {
				log.Error().Err(err).Str("vehicle", event.VehicleRef).Msg("Failed to resolve ping for arrival")
				continue
			}
		}
		if ping == nil {
			continue
		}

		stop, err := b.stopRepository.Stop(ctx, event.StopRef)
		if err != nil || stop == nil {
			continue
		}

		previousPing, err := b.telemetryStore.PingBefore(ctx, event.VehicleRef, ping.RecordedAt)
		if err != nil {
			log.Error().Err(err).Str("vehicle", event.VehicleRef).Msg("Failed to resolve previous ping")
			continue
		}

		snapshot := b.contextProvider.LatestSnapshot(ctx, ping.Location, ping.RecordedAt)

		vector := features.Extract(ping, previousPing, stop, snapshot)
		if !vector.Complete() {
			continue
		}

		labelMinutes := event.ArrivalTime.Sub(ping.RecordedAt).Minutes()
		if labelMinutes <= 0 {
			continue
		}

		dataset = append(dataset, TrainingRow{
			Vector:       vector,
			LabelMinutes: labelMinutes,
		})
	}

	return dataset, nil
}
