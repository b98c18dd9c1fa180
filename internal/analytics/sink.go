// -----------------------------------------------------------------------------
// Analytics Sinks
// -----------------------------------------------------------------------------
// A Sink records lifecycle events for reporting. Three implementations:
//
//   - MemorySink: in-process counters, used by tests and the demo
//   - SQLSink:    one row per event in the event_analytics table
//   - RedisSink:  per-event and global counters in Redis hashes
// -----------------------------------------------------------------------------

package analytics

import (
	"context"
	"sync"

	"github.com/biyonik/eventpro/internal/models"
)

// Sink records one lifecycle event.
type Sink interface {
	Record(ctx context.Context, event models.LifecycleEvent) error
}

// Snapshot is a point-in-time copy of MemorySink's counters.
type Snapshot struct {
	Total   int
	ByKind  map[models.TransitionKind]int
	ByEvent map[string]int
}

// MemorySink counts events in memory. Safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	total   int
	byKind  map[models.TransitionKind]int
	byEvent map[string]int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		byKind:  make(map[models.TransitionKind]int),
		byEvent: make(map[string]int),
	}
}

func (s *MemorySink) Record(ctx context.Context, event models.LifecycleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byKind[event.Kind]++
	s.byEvent[event.EventID]++
	return nil
}

// Snapshot copies the current counters.
func (s *MemorySink) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Total:   s.total,
		ByKind:  make(map[models.TransitionKind]int, len(s.byKind)),
		ByEvent: make(map[string]int, len(s.byEvent)),
	}
	for k, v := range s.byKind {
		snap.ByKind[k] = v
	}
	for k, v := range s.byEvent {
		snap.ByEvent[k] = v
	}
	return snap
}
