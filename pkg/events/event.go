package events

import "time"

type EventType string

const (
	EventTypeArrivalDetected EventType = "ArrivalDetected"
	EventTypeModelPublished  EventType = "ModelPublished"
)

type Event struct {
	Type EventType
	Body interface{}

	CreationDateTime time.Time
}
