package transit

import (
	"fmt"
	"time"
)

// Ping is a single raw position observation for a vehicle. Immutable once
// recorded.
type Ping struct {
	VehicleRef string    `groups:"basic"`
	Location   *Location `groups:"basic"`
	RecordedAt time.Time `groups:"basic"`

	CreationDateTime time.Time   `groups:"detailed"`
	DataSource       *DataSource `groups:"internal"`
}

func (p *Ping) Validate() error {
	if p.VehicleRef == "" {
		return fmt.Errorf("%w: missing vehicle reference", ErrInvalidInput)
	}
	if p.Location == nil || len(p.Location.Coordinates) != 2 {
		return fmt.Errorf("%w: missing location coordinates", ErrInvalidInput)
	}
	if lat := p.Location.Latitude(); lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidInput, lat)
	}
	if lon := p.Location.Longitude(); lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidInput, lon)
	}
	if p.RecordedAt.IsZero() {
		return fmt.Errorf("%w: missing recorded at timestamp", ErrInvalidInput)
	}

	return nil
}
