package arrivals

import (
	"context"
	"sync"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

type MemoryStore struct {
	mutex  sync.RWMutex
	events []*transit.ArrivalEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) RecordArrival(ctx context.Context, event *transit.ArrivalEvent) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.events = append(s.events, event)

	return nil
}

func (s *MemoryStore) ExistsWithin(ctx context.Context, vehicleRef string, stopRef string, around time.Time, window time.Duration) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, event := range s.events {
		if event.VehicleRef != vehicleRef || event.StopRef != stopRef {
			continue
		}

		delta := event.ArrivalTime.Sub(around)
		if delta < 0 {
			delta = -delta
		}

		if delta <= window {
			return true, nil
		}
	}

	return false, nil
}

func (s *MemoryStore) ArrivalsForVehicle(ctx context.Context, vehicleRef string, from time.Time, to time.Time) ([]*transit.ArrivalEvent, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var matched []*transit.ArrivalEvent
	for _, event := range s.events {
		if event.VehicleRef != vehicleRef {
			continue
		}
		if !from.IsZero() && event.ArrivalTime.Before(from) {
			continue
		}
		if !to.IsZero() && event.ArrivalTime.After(to) {
			continue
		}

		matched = append(matched, event)
	}

	return matched, nil
}

func (s *MemoryStore) AllArrivals(ctx context.Context) ([]*transit.ArrivalEvent, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := make([]*transit.ArrivalEvent, len(s.events))
	copy(events, s.events)

	return events, nil
}
