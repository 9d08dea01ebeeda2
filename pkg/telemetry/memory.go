package telemetry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// MemoryStore is an in-process Store used in tests and for single-node
// deployments without MongoDB
type MemoryStore struct {
	mutex sync.RWMutex
	pings map[string][]*transit.Ping

	highWaterMark time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pings: map[string][]*transit.Ping{},
	}
}

func (s *MemoryStore) RecordPing(ctx context.Context, ping *transit.Ping) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	vehiclePings := append(s.pings[ping.VehicleRef], ping)
	sort.Slice(vehiclePings, func(i, j int) bool {
		return vehiclePings[i].RecordedAt.Before(vehiclePings[j].RecordedAt)
	})
	s.pings[ping.VehicleRef] = vehiclePings

	if ping.RecordedAt.After(s.highWaterMark) {
		s.highWaterMark = ping.RecordedAt
	}

	return nil
}

func (s *MemoryStore) LatestPing(ctx context.Context, vehicleRef string, asOf time.Time) (*transit.Ping, error) {
	return s.findLatest(vehicleRef, func(recordedAt time.Time) bool {
		return !recordedAt.After(asOf)
	}), nil
}

func (s *MemoryStore) PingBefore(ctx context.Context, vehicleRef string, before time.Time) (*transit.Ping, error) {
	return s.findLatest(vehicleRef, func(recordedAt time.Time) bool {
		return recordedAt.Before(before)
	}), nil
}

func (s *MemoryStore) findLatest(vehicleRef string, matches func(time.Time) bool) *transit.Ping {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	vehiclePings := s.pings[vehicleRef]
	for i := len(vehiclePings) - 1; i >= 0; i-- {
		if matches(vehiclePings[i].RecordedAt) {
			return vehiclePings[i]
		}
	}

	return nil
}

func (s *MemoryStore) RecentPings(ctx context.Context, vehicleRef string, limit int64) ([]*transit.Ping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	vehiclePings := s.pings[vehicleRef]

	var recent []*transit.Ping
	for i := len(vehiclePings) - 1; i >= 0 && int64(len(recent)) < limit; i-- {
		recent = append(recent, vehiclePings[i])
	}

	return recent, nil
}

func (s *MemoryStore) HighWaterMark(ctx context.Context) (time.Time, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.highWaterMark, nil
}
