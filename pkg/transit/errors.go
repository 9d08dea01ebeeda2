package transit

import "errors"

var (
	// ErrInvalidInput is a malformed ping or coordinate rejected at ingestion
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData covers datasets too small to train on
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoData means no telemetry exists for the requested vehicle
	ErrNoData = errors.New("no telemetry data")

	// ErrNoModel means no model artifact has ever been published
	ErrNoModel = errors.New("no published model")

	// ErrSchemaMismatch means the published artifact was trained on a feature
	// schema that cannot be populated for this request
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)
