package features

import (
	"math"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

const secondsPerDay = 86400

// Extract maps one ping onto the fixed feature schema. It is pure: the
// previous ping, target stop and context snapshot are resolved by the caller
// and any of them may be nil. Dataset construction and prediction both go
// through this one function so the two can never drift apart.
func Extract(ping *transit.Ping, previousPing *transit.Ping, stop *transit.Stop, snapshot *transit.ContextSnapshot) *Vector {
	vector := &Vector{
		SchemaVersion: SchemaV1,
		Values:        make([]float64, len(schemaV1Fields)),
		Present:       make([]bool, len(schemaV1Fields)),
	}

	if stop != nil && stop.Location != nil {
		vector.set("distance_to_stop_m", ping.Location.Distance(stop.Location))
		vector.set("bearing_to_stop_deg", ping.Location.Bearing(stop.Location))
	}

	vector.set("speed_kmh", instantaneousSpeed(ping, previousPing))

	recordedAt := ping.RecordedAt.UTC()
	hour := recordedAt.Hour()
	minute := recordedAt.Minute()
	dayOfWeek := mondayIndexedWeekday(recordedAt)

	vector.set("hour", float64(hour))
	vector.set("minute", float64(minute))
	vector.set("day_of_week", float64(dayOfWeek))

	secondsOfDay := float64(hour*3600 + minute*60 + recordedAt.Second())
	hourAngle := 2 * math.Pi * secondsOfDay / secondsPerDay
	vector.set("hour_sin", math.Sin(hourAngle))
	vector.set("hour_cos", math.Cos(hourAngle))

	dowAngle := 2 * math.Pi * float64(dayOfWeek) / 7
	vector.set("dow_sin", math.Sin(dowAngle))
	vector.set("dow_cos", math.Cos(dowAngle))

	// Precipitation has a meaningful neutral default, temperature & traffic
	// do not so they stay marked as missing
	precipitation := 0.0
	if snapshot != nil {
		precipitation = snapshot.PrecipitationMM
	}
	vector.set("precip_mm", precipitation)

	vector.set("temp_c_known", 0)
	vector.set("traffic_level_known", 0)

	if snapshot != nil && snapshot.TemperatureC != nil {
		vector.set("temp_c", *snapshot.TemperatureC)
		vector.set("temp_c_known", 1)
	}
	if snapshot != nil && snapshot.TrafficLevel != nil {
		vector.set("traffic_level", *snapshot.TrafficLevel)
		vector.set("traffic_level_known", 1)
	}

	return vector
}

// instantaneousSpeed returns km/h derived from the previous ping of the same
// vehicle. No previous ping, or a non-positive elapsed time from a clock
// anomaly, yields zero rather than an undefined value.
func instantaneousSpeed(ping *transit.Ping, previousPing *transit.Ping) float64 {
	if previousPing == nil {
		return 0
	}

	elapsedSeconds := ping.RecordedAt.Sub(previousPing.RecordedAt).Seconds()
	if elapsedSeconds <= 0 {
		return 0
	}

	distanceMeters := previousPing.Location.Distance(ping.Location)

	return (distanceMeters / elapsedSeconds) * 3.6
}

// mondayIndexedWeekday converts Go's Sunday=0 weekday to Monday=0
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func (v *Vector) set(name string, value float64) {
	for i, field := range schemaV1Fields {
		if field.Name == name {
			v.Values[i] = value
			v.Present[i] = true
			return
		}
	}
}
