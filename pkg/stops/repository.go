package stops

import (
	"context"

	"github.com/arrivo/arrivo/pkg/transit"
)

// Repository is read-only stop reference data. Lookups that find nothing
// return a nil stop and a nil error.
type Repository interface {
	Stop(ctx context.Context, identifier string) (*transit.Stop, error)

	// DetectionCandidates returns the stops the arrival detector should
	// evaluate pings against
	DetectionCandidates(ctx context.Context, destinationsOnly bool) ([]*transit.Stop, error)
}
