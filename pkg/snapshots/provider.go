package snapshots

import (
	"context"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// Provider answers "what was the weather/traffic at or before this instant".
// A nil snapshot means none is known; every caller must tolerate that, and
// provider failures degrade to nil rather than propagating.
type Provider interface {
	LatestSnapshot(ctx context.Context, location *transit.Location, atOrBefore time.Time) *transit.ContextSnapshot
}

// lookupTimeout bounds external snapshot lookups so a slow provider can
// never stall ping processing or a prediction request
const lookupTimeout = 500 * time.Millisecond
