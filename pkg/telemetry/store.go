package telemetry

import (
	"context"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// Store is the append-only record of vehicle position pings. Lookups that
// find nothing return a nil ping and a nil error.
type Store interface {
	RecordPing(ctx context.Context, ping *transit.Ping) error

	// LatestPing returns the most recent ping for the vehicle recorded at or
	// before asOf
	LatestPing(ctx context.Context, vehicleRef string, asOf time.Time) (*transit.Ping, error)

	// PingBefore returns the most recent ping for the vehicle recorded
	// strictly before the given instant
	PingBefore(ctx context.Context, vehicleRef string, before time.Time) (*transit.Ping, error)

	RecentPings(ctx context.Context, vehicleRef string, limit int64) ([]*transit.Ping, error)

	// HighWaterMark is the newest recorded timestamp across all vehicles,
	// zero when no pings exist
	HighWaterMark(ctx context.Context) (time.Time, error)
}

// Record validates and appends a ping, stamping its creation time
func Record(ctx context.Context, store Store, ping *transit.Ping) error {
	if err := ping.Validate(); err != nil {
		return err
	}

	if ping.CreationDateTime.IsZero() {
		ping.CreationDateTime = time.Now()
	}

	return store.RecordPing(ctx, ping)
}
