package features

import (
	"fmt"

	"github.com/arrivo/arrivo/pkg/transit"
)

// SchemaV1 is the current feature schema. A model artifact records the
// schema it was trained with and predictions are refused on any mismatch.
const SchemaV1 = "v1"

type Field struct {
	Name string

	// Required fields must be populated for a vector to be usable; optional
	// ones carry a companion *_known indicator instead
	Required bool
}

var schemaV1Fields = []Field{
	{Name: "distance_to_stop_m", Required: true},
	{Name: "bearing_to_stop_deg", Required: true},
	{Name: "speed_kmh", Required: true},
	{Name: "hour", Required: true},
	{Name: "minute", Required: true},
	{Name: "day_of_week", Required: true},
	{Name: "hour_sin", Required: true},
	{Name: "hour_cos", Required: true},
	{Name: "dow_sin", Required: true},
	{Name: "dow_cos", Required: true},
	{Name: "precip_mm", Required: true},
	{Name: "temp_c", Required: false},
	{Name: "temp_c_known", Required: true},
	{Name: "traffic_level", Required: false},
	{Name: "traffic_level_known", Required: true},
}

func SchemaFields(version string) ([]Field, error) {
	if version != SchemaV1 {
		return nil, fmt.Errorf("%w: unknown schema version %s", transit.ErrSchemaMismatch, version)
	}

	return schemaV1Fields, nil
}

// Vector is a fixed-order numeric feature vector. Values and Present are
// indexed by schema field position.
type Vector struct {
	SchemaVersion string
	Values        []float64
	Present       []bool
}

// Complete reports whether every required field was populated
func (v *Vector) Complete() bool {
	fields, err := SchemaFields(v.SchemaVersion)
	if err != nil {
		return false
	}

	for i, field := range fields {
		if field.Required && !v.Present[i] {
			return false
		}
	}

	return true
}

// ModelInput returns the numeric columns fed to the regressor. Optional
// fields that are absent contribute a zero value alongside a zeroed *_known
// indicator; a missing required field is a schema mismatch.
func (v *Vector) ModelInput(schemaVersion string) ([]float64, error) {
	if v.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("%w: vector schema %s, artifact schema %s", transit.ErrSchemaMismatch, v.SchemaVersion, schemaVersion)
	}

	if !v.Complete() {
		return nil, fmt.Errorf("%w: required feature missing", transit.ErrSchemaMismatch)
	}

	return v.Values, nil
}
