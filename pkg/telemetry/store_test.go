package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPing(recordedAt time.Time) *transit.Ping {
	return &transit.Ping{
		VehicleRef: "bus-1",
		Location:   transit.NewLocation(-0.1278, 51.5074),
		RecordedAt: recordedAt,
	}
}

func TestRecordRejectsInvalidPing(t *testing.T) {
	store := NewMemoryStore()

	err := Record(context.Background(), store, &transit.Ping{VehicleRef: "bus-1"})

	assert.ErrorIs(t, err, transit.ErrInvalidInput)

	mark, err := store.HighWaterMark(context.Background())
	require.NoError(t, err)
	assert.True(t, mark.IsZero())
}

func TestRecordStampsCreationTime(t *testing.T) {
	store := NewMemoryStore()

	ping := validPing(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	require.NoError(t, Record(context.Background(), store, ping))

	assert.False(t, ping.CreationDateTime.IsZero())
}

func TestLatestPingIsInclusive(t *testing.T) {
	store := NewMemoryStore()

	recordedAt := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPing(context.Background(), validPing(recordedAt)))

	ping, err := store.LatestPing(context.Background(), "bus-1", recordedAt)
	require.NoError(t, err)
	require.NotNil(t, ping)
	assert.Equal(t, recordedAt, ping.RecordedAt)

	ping, err = store.LatestPing(context.Background(), "bus-1", recordedAt.Add(-time.Second))
	require.NoError(t, err)
	assert.Nil(t, ping)
}

func TestPingBeforeIsExclusive(t *testing.T) {
	store := NewMemoryStore()

	first := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	require.NoError(t, store.RecordPing(context.Background(), validPing(first)))
	require.NoError(t, store.RecordPing(context.Background(), validPing(second)))

	ping, err := store.PingBefore(context.Background(), "bus-1", second)
	require.NoError(t, err)
	require.NotNil(t, ping)
	assert.Equal(t, first, ping.RecordedAt)

	ping, err = store.PingBefore(context.Background(), "bus-1", first)
	require.NoError(t, err)
	assert.Nil(t, ping)
}

func TestPingsSortedRegardlessOfInsertOrder(t *testing.T) {
	store := NewMemoryStore()

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	// Out of order arrival of telemetry
	require.NoError(t, store.RecordPing(context.Background(), validPing(base.Add(2*time.Minute))))
	require.NoError(t, store.RecordPing(context.Background(), validPing(base)))
	require.NoError(t, store.RecordPing(context.Background(), validPing(base.Add(time.Minute))))

	ping, err := store.LatestPing(context.Background(), "bus-1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Minute), ping.RecordedAt)

	recent, err := store.RecentPings(context.Background(), "bus-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, base.Add(2*time.Minute), recent[0].RecordedAt)
	assert.Equal(t, base.Add(time.Minute), recent[1].RecordedAt)
}

func TestHighWaterMarkTracksNewest(t *testing.T) {
	store := NewMemoryStore()

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordPing(context.Background(), validPing(base.Add(time.Minute))))
	require.NoError(t, store.RecordPing(context.Background(), validPing(base)))

	mark, err := store.HighWaterMark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), mark)
}

func TestVehiclesAreIsolated(t *testing.T) {
	store := NewMemoryStore()

	recordedAt := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordPing(context.Background(), validPing(recordedAt)))

	ping, err := store.LatestPing(context.Background(), "bus-2", recordedAt)
	require.NoError(t, err)
	assert.Nil(t, ping)
}
