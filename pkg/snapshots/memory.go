package snapshots

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arrivo/arrivo/pkg/transit"
)

// MemoryProvider holds snapshots in process, for tests and local runs
type MemoryProvider struct {
	mutex     sync.RWMutex
	snapshots []*transit.ContextSnapshot
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (p *MemoryProvider) AddSnapshot(snapshot *transit.ContextSnapshot) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.snapshots = append(p.snapshots, snapshot)
	sort.Slice(p.snapshots, func(i, j int) bool {
		return p.snapshots[i].RecordedAt.Before(p.snapshots[j].RecordedAt)
	})
}

func (p *MemoryProvider) LatestSnapshot(ctx context.Context, location *transit.Location, atOrBefore time.Time) *transit.ContextSnapshot {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	for i := len(p.snapshots) - 1; i >= 0; i-- {
		if !p.snapshots[i].RecordedAt.After(atOrBefore) {
			return p.snapshots[i]
		}
	}

	return nil
}
