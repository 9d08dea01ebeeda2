package arrivals

import (
	"context"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// Store is the append-only log of confirmed arrivals
type Store interface {
	RecordArrival(ctx context.Context, event *transit.ArrivalEvent) error

	// ExistsWithin reports whether an event for (vehicle, stop) already has
	// an arrival time inside the window around the given instant
	ExistsWithin(ctx context.Context, vehicleRef string, stopRef string, around time.Time, window time.Duration) (bool, error)

	ArrivalsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ArrivalEvent, error)

	AllArrivals(ctx context.Context) ([]*transit.ArrivalEvent, error)
}
