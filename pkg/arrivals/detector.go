package arrivals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/arrivo/arrivo/pkg/elastic_client"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type DetectorConfig struct {
	// ProximityThresholdMeters is how close a ping must be to a stop to
	// count as an arrival
	ProximityThresholdMeters float64

	// DedupeWindow suppresses repeat arrivals for the same (vehicle, stop)
	// caused by GPS jitter while the vehicle idles at the stop
	DedupeWindow time.Duration

	// DestinationStopsOnly restricts the scan to destination-flagged stops
	DestinationStopsOnly bool
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ProximityThresholdMeters: 100,
		DedupeWindow:             120 * time.Second,
		DestinationStopsOnly:     true,
	}
}

type proximityState int

const (
	stateAway proximityState = iota
	stateArrived
)

type vehicleStopState struct {
	state        proximityState
	lastLoggedAt time.Time
}

// Detector turns newly recorded pings into deduplicated arrival events. The
// per-pair state machine is serialised so concurrent pings for one vehicle
// cannot race the dedupe check: only the ping that makes the AWAY to ARRIVED
// transition reaches the arrival store at all.
type Detector struct {
	config DetectorConfig

	stopRepository stops.Repository
	arrivalStore   Store

	mutex  sync.Mutex
	states map[string]*vehicleStopState
}

func NewDetector(config DetectorConfig, stopRepository stops.Repository, arrivalStore Store) *Detector {
	return &Detector{
		config:         config,
		stopRepository: stopRepository,
		arrivalStore:   arrivalStore,
		states:         map[string]*vehicleStopState{},
	}
}

// EvaluatePing checks a newly recorded ping against candidate stops. The
// first stop inside the proximity threshold wins and ends evaluation for the
// ping, whether its arrival is logged or suppressed as a duplicate; at most
// one event is created per ping. Returns nil when no arrival was confirmed.
func (d *Detector) EvaluatePing(ctx context.Context, ping *transit.Ping) (*transit.ArrivalEvent, error) {
	candidates, err := d.stopRepository.DetectionCandidates(ctx, d.config.DestinationStopsOnly)
	if err != nil {
		return nil, err
	}

	for _, stop := range candidates {
		if stop.Location == nil {
			continue
		}

		distance := ping.Location.Distance(stop.Location)

		if !d.transitionToArrived(ping, stop, distance) {
			continue
		}

		duplicate, err := d.arrivalStore.ExistsWithin(ctx, ping.VehicleRef, stop.PrimaryIdentifier, ping.RecordedAt, d.config.DedupeWindow)
		if err != nil {
			log.Error().Err(err).
				Str("vehicle", ping.VehicleRef).
				Str("stop", stop.PrimaryIdentifier).
				Msg("Failed to check for duplicate arrival")
			continue
		}

		d.indexDetectionEvent(ping, stop, distance, duplicate)

		if duplicate {
			return nil, nil
		}

		event := &transit.ArrivalEvent{
			PrimaryIdentifier: uuid.NewString(),
			VehicleRef:        ping.VehicleRef,
			StopRef:           stop.PrimaryIdentifier,
			ArrivalTime:       ping.RecordedAt,
			CreationDateTime:  time.Now(),
			DataSource:        ping.DataSource,
		}

		if err := d.arrivalStore.RecordArrival(ctx, event); err != nil {
			return nil, err
		}

		log.Info().
			Str("vehicle", event.VehicleRef).
			Str("stop", event.StopRef).
			Float64("distance", distance).
			Msg("Vehicle arrived at stop")

		return event, nil
	}

	return nil, nil
}

// transitionToArrived updates the (vehicle, stop) state machine for one ping
// and reports whether this ping is the AWAY to ARRIVED transition. Only the
// in-memory state is touched under the lock, store lookups stay outside it so
// one vehicle's dedupe check never stalls another vehicle's pings.
func (d *Detector) transitionToArrived(ping *transit.Ping, stop *transit.Stop, distance float64) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	stateKey := fmt.Sprintf("%s/%s", ping.VehicleRef, stop.PrimaryIdentifier)
	state := d.states[stateKey]
	if state == nil {
		state = &vehicleStopState{state: stateAway}
		d.states[stateKey] = state
	}

	if distance > d.config.ProximityThresholdMeters {
		state.state = stateAway
		return false
	}

	alreadyArrived := state.state == stateArrived
	state.state = stateArrived
	state.lastLoggedAt = ping.RecordedAt

	return !alreadyArrived
}

func (d *Detector) indexDetectionEvent(ping *transit.Ping, stop *transit.Stop, distance float64, duplicate bool) {
	detectionEvent, _ := json.Marshal(ArrivalDetectionElasticEvent{
		Timestamp: time.Now(),

		VehicleRef:     ping.VehicleRef,
		StopRef:        stop.PrimaryIdentifier,
		DistanceMeters: distance,
		Deduplicated:   duplicate,
	})

	yearNumber, weekNumber := time.Now().ISOWeek()
	indexName := fmt.Sprintf("arrivo-arrival-detections-%d-%d", yearNumber, weekNumber)

	elastic_client.IndexRequest(indexName, bytes.NewReader(detectionEvent))
}
