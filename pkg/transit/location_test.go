package transit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistanceSamePointIsZero(t *testing.T) {
	location := NewLocation(-0.1278, 51.5074)

	assert.Equal(t, 0.0, location.Distance(location))
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := NewLocation(-0.1278, 51.5074)
	b := NewLocation(-0.0877, 51.5081)

	assert.InDelta(t, a.Distance(b), b.Distance(a), 0.000001)
}

func TestDistanceKnownValue(t *testing.T) {
	// One millidegree of latitude is roughly 111.19m
	a := NewLocation(0, 51.5)
	b := NewLocation(0, 51.501)

	assert.InDelta(t, 111.19, a.Distance(b), 0.5)
}

func TestBearingCardinalDirections(t *testing.T) {
	origin := NewLocation(0, 0)

	assert.InDelta(t, 0, origin.Bearing(NewLocation(0, 1)), 0.01)
	assert.InDelta(t, 90, origin.Bearing(NewLocation(1, 0)), 0.01)
	assert.InDelta(t, 180, origin.Bearing(NewLocation(0, -1)), 0.01)
	assert.InDelta(t, 270, origin.Bearing(NewLocation(-1, 0)), 0.01)
}

func TestPingValidate(t *testing.T) {
	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		ping  *Ping
		valid bool
	}{
		{
			name:  "valid",
			ping:  &Ping{VehicleRef: "bus-1", Location: NewLocation(-0.1278, 51.5074), RecordedAt: recordedAt},
			valid: true,
		},
		{
			name:  "missing vehicle",
			ping:  &Ping{Location: NewLocation(-0.1278, 51.5074), RecordedAt: recordedAt},
			valid: false,
		},
		{
			name:  "missing location",
			ping:  &Ping{VehicleRef: "bus-1", RecordedAt: recordedAt},
			valid: false,
		},
		{
			name:  "latitude out of range",
			ping:  &Ping{VehicleRef: "bus-1", Location: NewLocation(-0.1278, 94), RecordedAt: recordedAt},
			valid: false,
		},
		{
			name:  "longitude out of range",
			ping:  &Ping{VehicleRef: "bus-1", Location: NewLocation(-185, 51.5074), RecordedAt: recordedAt},
			valid: false,
		},
		{
			name:  "missing timestamp",
			ping:  &Ping{VehicleRef: "bus-1", Location: NewLocation(-0.1278, 51.5074)},
			valid: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.ping.Validate()

			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}
