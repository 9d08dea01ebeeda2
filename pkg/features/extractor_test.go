package features

import (
	"testing"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldValue(t *testing.T, vector *Vector, name string) float64 {
	t.Helper()

	for i, field := range schemaV1Fields {
		if field.Name == name {
			return vector.Values[i]
		}
	}

	t.Fatalf("unknown field %s", name)
	return 0
}

func testStop() *transit.Stop {
	return &transit.Stop{
		PrimaryIdentifier: "stop-1",
		PrimaryName:       "High Street",
		Location:          transit.NewLocation(-0.1278, 51.5074),
		IsDestination:     true,
	}
}

func testPing(recordedAt time.Time) *transit.Ping {
	return &transit.Ping{
		VehicleRef: "bus-1",
		Location:   transit.NewLocation(-0.13, 51.51),
		RecordedAt: recordedAt,
	}
}

func TestExtractSpeedWithoutPreviousPing(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), nil)

	assert.Equal(t, 0.0, fieldValue(t, vector, "speed_kmh"))
	assert.True(t, vector.Complete())
}

func TestExtractSpeedFromPreviousPing(t *testing.T) {
	previousPing := &transit.Ping{
		VehicleRef: "bus-1",
		Location:   transit.NewLocation(-0.135, 51.51),
		RecordedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	ping := testPing(previousPing.RecordedAt.Add(60 * time.Second))

	vector := Extract(ping, previousPing, testStop(), nil)

	expected := previousPing.Location.Distance(ping.Location) / 60 * 3.6
	assert.InDelta(t, expected, fieldValue(t, vector, "speed_kmh"), 0.0001)
	assert.Greater(t, fieldValue(t, vector, "speed_kmh"), 0.0)
}

func TestExtractSpeedZeroOnClockAnomaly(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	laterPing := &transit.Ping{
		VehicleRef: "bus-1",
		Location:   transit.NewLocation(-0.135, 51.51),
		RecordedAt: ping.RecordedAt.Add(30 * time.Second),
	}

	// The "previous" ping carries a later timestamp than the current one
	vector := Extract(ping, laterPing, testStop(), nil)

	assert.Equal(t, 0.0, fieldValue(t, vector, "speed_kmh"))
}

func TestExtractTimeFeatures(t *testing.T) {
	// 2024-01-01 is a Monday; midnight puts both cyclic encodings at their
	// reference points
	ping := testPing(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), nil)

	assert.Equal(t, 0.0, fieldValue(t, vector, "hour"))
	assert.Equal(t, 0.0, fieldValue(t, vector, "minute"))
	assert.Equal(t, 0.0, fieldValue(t, vector, "day_of_week"))
	assert.InDelta(t, 0, fieldValue(t, vector, "hour_sin"), 0.000001)
	assert.InDelta(t, 1, fieldValue(t, vector, "hour_cos"), 0.000001)
	assert.InDelta(t, 0, fieldValue(t, vector, "dow_sin"), 0.000001)
	assert.InDelta(t, 1, fieldValue(t, vector, "dow_cos"), 0.000001)
}

func TestExtractSundayIsSix(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), nil)

	assert.Equal(t, 6.0, fieldValue(t, vector, "day_of_week"))
}

func TestExtractMissingContextMarkedNotZeroed(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), nil)

	assert.Equal(t, 0.0, fieldValue(t, vector, "temp_c_known"))
	assert.Equal(t, 0.0, fieldValue(t, vector, "traffic_level_known"))
	assert.Equal(t, 0.0, fieldValue(t, vector, "precip_mm"))

	// Absent optional fields never block a vector from being usable
	assert.True(t, vector.Complete())

	_, err := vector.ModelInput(SchemaV1)
	assert.NoError(t, err)
}

func TestExtractContextSnapshotValues(t *testing.T) {
	temperature := 18.5
	traffic := 0.7

	snapshot := &transit.ContextSnapshot{
		TemperatureC:    &temperature,
		PrecipitationMM: 2.4,
		TrafficLevel:    &traffic,
		RecordedAt:      time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}

	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), snapshot)

	assert.Equal(t, 18.5, fieldValue(t, vector, "temp_c"))
	assert.Equal(t, 1.0, fieldValue(t, vector, "temp_c_known"))
	assert.Equal(t, 2.4, fieldValue(t, vector, "precip_mm"))
	assert.Equal(t, 0.7, fieldValue(t, vector, "traffic_level"))
	assert.Equal(t, 1.0, fieldValue(t, vector, "traffic_level_known"))
}

func TestExtractWithoutStopIsIncomplete(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, nil, nil)

	assert.False(t, vector.Complete())

	_, err := vector.ModelInput(SchemaV1)
	assert.ErrorIs(t, err, transit.ErrSchemaMismatch)
}

func TestExtractIsDeterministic(t *testing.T) {
	previousPing := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	ping := testPing(previousPing.RecordedAt.Add(30 * time.Second))

	first := Extract(ping, previousPing, testStop(), nil)
	second := Extract(ping, previousPing, testStop(), nil)

	require.Equal(t, first.Values, second.Values)
	require.Equal(t, first.Present, second.Present)
}

func TestModelInputRejectsSchemaMismatch(t *testing.T) {
	ping := testPing(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	vector := Extract(ping, nil, testStop(), nil)

	_, err := vector.ModelInput("v2")
	assert.ErrorIs(t, err, transit.ErrSchemaMismatch)
}
