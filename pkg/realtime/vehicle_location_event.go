package realtime

import (
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// VehicleLocationEvent is the queue payload for one inbound position update
type VehicleLocationEvent struct {
	VehicleRef string `groups:"basic"`

	Location   transit.Location `groups:"basic"`
	RecordedAt time.Time        `groups:"basic"`

	CreationDateTime time.Time `groups:"detailed"`

	DataSource *transit.DataSource `groups:"internal"`
}

func (e *VehicleLocationEvent) ToPing() *transit.Ping {
	location := e.Location

	return &transit.Ping{
		VehicleRef: e.VehicleRef,
		Location:   &location,
		RecordedAt: e.RecordedAt,

		CreationDateTime: e.CreationDateTime,
		DataSource:       e.DataSource,
	}
}
