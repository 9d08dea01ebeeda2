package transit

import "time"

// ArrivalEvent is a confirmed detection that a vehicle reached a stop's
// proximity. At most one event exists per (vehicle, stop) within the dedupe
// window.
type ArrivalEvent struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string `groups:"basic"`
	StopRef    string `groups:"basic"`

	ArrivalTime time.Time `groups:"basic"`

	CreationDateTime time.Time   `groups:"detailed"`
	DataSource       *DataSource `groups:"internal"`
}
