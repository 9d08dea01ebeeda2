package stops

import (
	"context"
	"sync"

	"github.com/arrivo/arrivo/pkg/transit"
)

type MemoryRepository struct {
	mutex sync.RWMutex
	stops []*transit.Stop
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) AddStop(stop *transit.Stop) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.stops = append(r.stops, stop)
}

func (r *MemoryRepository) Stop(ctx context.Context, identifier string) (*transit.Stop, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, stop := range r.stops {
		if stop.PrimaryIdentifier == identifier {
			return stop, nil
		}
	}

	return nil, nil
}

func (r *MemoryRepository) DetectionCandidates(ctx context.Context, destinationsOnly bool) ([]*transit.Stop, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var candidates []*transit.Stop
	for _, stop := range r.stops {
		if destinationsOnly && !stop.IsDestination {
			continue
		}

		candidates = append(candidates, stop)
	}

	return candidates, nil
}
