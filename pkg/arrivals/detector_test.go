package arrivals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stopLocation = transit.NewLocation(-0.1278, 51.5074)

func detectorFixture(config DetectorConfig) (*Detector, *MemoryStore) {
	repository := stops.NewMemoryRepository()
	repository.AddStop(&transit.Stop{
		PrimaryIdentifier: "stop-1",
		PrimaryName:       "High Street",
		Location:          stopLocation,
		IsDestination:     true,
	})
	repository.AddStop(&transit.Stop{
		PrimaryIdentifier: "stop-2",
		PrimaryName:       "Mid Route",
		Location:          transit.NewLocation(-0.2, 51.6),
		IsDestination:     false,
	})

	store := NewMemoryStore()

	return NewDetector(config, repository, store), store
}

func pingAt(location *transit.Location, recordedAt time.Time) *transit.Ping {
	return &transit.Ping{
		VehicleRef: "bus-1",
		Location:   location,
		RecordedAt: recordedAt,
	}
}

// nearStopLocation is within a few meters of the stop, farLocation several
// kilometers away
var nearStopLocation = transit.NewLocation(-0.12781, 51.50741)
var farLocation = transit.NewLocation(-0.2, 51.55)

func TestDetectorFarPingCreatesNothing(t *testing.T) {
	detector, _ := detectorFixture(DefaultDetectorConfig())

	event, err := detector.EvaluatePing(context.Background(), pingAt(farLocation, time.Now()))

	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestDetectorProximityCreatesEvent(t *testing.T) {
	detector, store := detectorFixture(DefaultDetectorConfig())

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	event, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt))

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "bus-1", event.VehicleRef)
	assert.Equal(t, "stop-1", event.StopRef)
	assert.Equal(t, recordedAt, event.ArrivalTime)
	assert.NotEmpty(t, event.PrimaryIdentifier)

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDetectorIdlingVehicleLogsOnce(t *testing.T) {
	detector, store := detectorFixture(DefaultDetectorConfig())

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	// A burst of jittery pings while the vehicle sits at the stop
	for i := 0; i < 5; i++ {
		_, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt.Add(time.Duration(i)*10*time.Second)))
		require.NoError(t, err)
	}

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDetectorDedupeWindowSuppressesReturn(t *testing.T) {
	detector, store := detectorFixture(DefaultDetectorConfig())

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	_, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt))
	require.NoError(t, err)

	// Drifts out of range then straight back within the dedupe window
	_, err = detector.EvaluatePing(context.Background(), pingAt(farLocation, recordedAt.Add(30*time.Second)))
	require.NoError(t, err)

	event, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt.Add(60*time.Second)))
	require.NoError(t, err)
	assert.Nil(t, event)

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDetectorNewArrivalAfterDedupeWindow(t *testing.T) {
	detector, store := detectorFixture(DefaultDetectorConfig())

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	_, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt))
	require.NoError(t, err)

	_, err = detector.EvaluatePing(context.Background(), pingAt(farLocation, recordedAt.Add(5*time.Minute)))
	require.NoError(t, err)

	event, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt.Add(10*time.Minute)))
	require.NoError(t, err)
	require.NotNil(t, event)

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestDetectorIgnoresNonDestinationStops(t *testing.T) {
	detector, store := detectorFixture(DefaultDetectorConfig())

	// Right on top of the non-destination stop
	event, err := detector.EvaluatePing(context.Background(), pingAt(transit.NewLocation(-0.2, 51.6), time.Now()))

	require.NoError(t, err)
	assert.Nil(t, event)

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDetectorAllStopsWhenConfigured(t *testing.T) {
	config := DefaultDetectorConfig()
	config.DestinationStopsOnly = false

	detector, _ := detectorFixture(config)

	event, err := detector.EvaluatePing(context.Background(), pingAt(transit.NewLocation(-0.2, 51.6), time.Now()))

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "stop-2", event.StopRef)
}

// A ping in range of two stops whose first match dedupes must not fall
// through and log an arrival at the second stop
func TestDetectorDuplicateStopEndsEvaluationForPing(t *testing.T) {
	repository := stops.NewMemoryRepository()
	repository.AddStop(&transit.Stop{
		PrimaryIdentifier: "stop-1",
		PrimaryName:       "High Street",
		Location:          stopLocation,
		IsDestination:     true,
	})
	// ~55m north of stop-1, so pings at the stop are in range of both
	repository.AddStop(&transit.Stop{
		PrimaryIdentifier: "stop-1b",
		PrimaryName:       "High Street North",
		Location:          transit.NewLocation(-0.1278, 51.5079),
		IsDestination:     true,
	})

	store := NewMemoryStore()
	detector := NewDetector(DefaultDetectorConfig(), repository, store)

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	event, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "stop-1", event.StopRef)

	// Drifts out of range then straight back within the dedupe window
	_, err = detector.EvaluatePing(context.Background(), pingAt(farLocation, recordedAt.Add(30*time.Second)))
	require.NoError(t, err)

	event, err = detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt.Add(60*time.Second)))
	require.NoError(t, err)
	assert.Nil(t, event)

	events, err := store.AllArrivals(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "stop-1", events[0].StopRef)
}

// gatedArrivalStore holds every dedupe lookup until the gate opens, and
// reports when the first lookup has started
type gatedArrivalStore struct {
	*MemoryStore

	gate    chan struct{}
	entered chan struct{}

	enterOnce sync.Once
}

func (s *gatedArrivalStore) ExistsWithin(ctx context.Context, vehicleRef string, stopRef string, around time.Time, window time.Duration) (bool, error) {
	s.enterOnce.Do(func() { close(s.entered) })
	<-s.gate

	return s.MemoryStore.ExistsWithin(ctx, vehicleRef, stopRef, around, window)
}

// A slow dedupe lookup for one vehicle must not block evaluation of other
// vehicles' pings
func TestDetectorStoreLookupDoesNotBlockOtherVehicles(t *testing.T) {
	repository := stops.NewMemoryRepository()
	repository.AddStop(&transit.Stop{
		PrimaryIdentifier: "stop-1",
		PrimaryName:       "High Street",
		Location:          stopLocation,
		IsDestination:     true,
	})

	store := &gatedArrivalStore{
		MemoryStore: NewMemoryStore(),
		gate:        make(chan struct{}),
		entered:     make(chan struct{}),
	}

	detector := NewDetector(DefaultDetectorConfig(), repository, store)

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	first := make(chan struct{})
	go func() {
		defer close(first)

		event, err := detector.EvaluatePing(context.Background(), pingAt(nearStopLocation, recordedAt))
		assert.NoError(t, err)
		assert.NotNil(t, event)
	}()

	<-store.entered

	second := make(chan struct{})
	go func() {
		defer close(second)

		event, err := detector.EvaluatePing(context.Background(), &transit.Ping{
			VehicleRef: "bus-2",
			Location:   farLocation,
			RecordedAt: recordedAt,
		})
		assert.NoError(t, err)
		assert.Nil(t, event)
	}()

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("ping evaluation blocked behind another vehicle's dedupe lookup")
	}

	close(store.gate)
	<-first
}

func TestDetectorThresholdBoundary(t *testing.T) {
	config := DefaultDetectorConfig()
	config.ProximityThresholdMeters = 50

	detector, _ := detectorFixture(config)

	// ~111m north of the stop, inside the default threshold but outside the
	// tightened one
	outside := transit.NewLocation(-0.1278, 51.5084)

	event, err := detector.EvaluatePing(context.Background(), pingAt(outside, time.Now()))
	require.NoError(t, err)
	assert.Nil(t, event)
}
