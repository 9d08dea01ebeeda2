package transit

import "time"

// ContextSnapshot is an externally supplied weather/traffic observation.
// Nil pointer fields mean the value was not observed, which is distinct from
// an observed zero.
type ContextSnapshot struct {
	RecordedAt time.Time `groups:"basic"`
	Location   *Location `groups:"basic"`

	TemperatureC    *float64 `groups:"basic"`
	PrecipitationMM float64  `groups:"basic"`

	// TrafficLevel is current speed over free-flow speed, so 1.0 is free
	// flowing and values near 0 are heavily congested
	TrafficLevel *float64 `groups:"basic"`
}
