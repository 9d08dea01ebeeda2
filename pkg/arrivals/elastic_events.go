package arrivals

import (
	"time"
)

type ArrivalDetectionElasticEvent struct {
	Timestamp time.Time

	VehicleRef     string
	StopRef        string
	DistanceMeters float64

	// Deduplicated marks detections suppressed by the dedupe window
	Deduplicated bool
}
