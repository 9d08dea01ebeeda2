package transit

import "time"

const (
	ETAEstimatorModel     = "model"
	ETAEstimatorKinematic = "kinematic"
)

// ETARecord is an append-only audit entry for a served prediction
type ETARecord struct {
	VehicleRef string `groups:"basic"`
	StopRef    string `groups:"basic"`

	PredictedMinutes float64 `groups:"basic"`

	// Estimator records whether the trained model or the kinematic fallback
	// produced the value
	Estimator     string `groups:"basic"`
	SchemaVersion string `groups:"detailed"`

	RecordedAt time.Time `groups:"basic"`
}
