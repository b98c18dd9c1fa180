// -----------------------------------------------------------------------------
// Event Lifecycle Manager
// -----------------------------------------------------------------------------
// The manager owns event records and publishes one LifecycleEvent per
// transition to its subscribers.
//
// Delivery is synchronous: a transition call returns only after every
// subscriber has been invoked, in registration order, each with its own copy
// of the event.
// A subscriber that fails or panics is logged and skipped; the rest still run.
//
// Example:
//
//	manager := observer.NewManager(observer.WithLogger(logger))
//	manager.AddSubscriber(observer.NewAnalyticsRecorder(sink))
//
//	id := manager.Create(ctx, models.EventInput{Title: "Go Workshop", Type: models.EventTypeWorkshop})
//	manager.Complete(ctx, id)
// -----------------------------------------------------------------------------

package observer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/internal/observability"
)

var (
	// ErrUnknownEvent is logged when a transition targets an id the manager
	// does not hold.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrSubscriberFailure wraps every error or panic raised by a subscriber.
	ErrSubscriberFailure = errors.New("subscriber failed")
)

// Subscriber receives lifecycle events. Subscribers are compared by
// identity, so implementations should be pointers. AddSubscriber rejects
// dynamic types that cannot be compared with ==.
type Subscriber interface {
	Name() string
	Update(ctx context.Context, event models.LifecycleEvent) error
}

// Manager holds event records and their subscribers.
type Manager struct {
	mu          sync.RWMutex
	records     map[string]*models.EventRecord
	subscribers []Subscriber

	clock   func() time.Time
	newID   func() string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(metrics *observability.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithClock sets the source of event timestamps.
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

func NewManager(options ...ManagerOption) *Manager {
	m := &Manager{
		records: make(map[string]*models.EventRecord),
		clock:   time.Now,
		newID:   uuid.NewString,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = m.logger.Named("lifecycle")
	return m
}

// AddSubscriber appends s to the fan-out list. Adding the same subscriber
// twice delivers every event to it twice. It panics if s is nil or its
// dynamic type is not comparable.
func (m *Manager) AddSubscriber(s Subscriber) {
	if s == nil {
		panic("observer: nil subscriber")
	}
	if t := reflect.TypeOf(s); !t.Comparable() {
		panic(fmt.Sprintf("observer: subscriber type %s is not comparable, register a pointer", t))
	}

	m.mu.Lock()
	m.subscribers = append(m.subscribers, s)
	m.mu.Unlock()

	m.logger.Info("➕ subscriber added", zap.String("subscriber", s.Name()))
}

// RemoveSubscriber removes the first registration of s. Removing a
// subscriber that is not registered does nothing.
func (m *Manager) RemoveSubscriber(s Subscriber) {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return
	}

	m.mu.Lock()
	removed := false
	for i, sub := range m.subscribers {
		if sub == s {
			m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()

	if removed {
		m.logger.Info("➖ subscriber removed", zap.String("subscriber", s.Name()))
	}
}

// SubscriberCount returns the number of registrations.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// SubscriberNames returns subscriber names in fan-out order.
func (m *Manager) SubscriberNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.subscribers))
	for i, s := range m.subscribers {
		names[i] = s.Name()
	}
	return names
}

// Get returns a copy of the record with the given id.
func (m *Manager) Get(id string) (models.EventRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return models.EventRecord{}, false
	}
	return rec.Clone(), true
}

// Create stores a new record with status CREATED, publishes CREATED and
// returns the new id. It never fails.
func (m *Manager) Create(ctx context.Context, in models.EventInput) string {
	rec := &models.EventRecord{
		ID:            m.newID(),
		Title:         in.Title,
		Type:          models.ParseEventType(string(in.Type)),
		DurationHours: in.DurationHours,
		Status:        models.EventStatusCreated,
		Premium:       in.Premium,
		ContactEmail:  in.ContactEmail,
	}
	if in.Attributes != nil {
		rec.Attributes = make(map[string]any, len(in.Attributes))
		for k, v := range in.Attributes {
			rec.Attributes[k] = v
		}
	}

	m.mu.Lock()
	m.records[rec.ID] = rec
	snapshot := rec.Clone()
	m.mu.Unlock()

	m.publish(ctx, models.NewLifecycleEvent(models.TransitionCreated, snapshot, m.clock()))
	return snapshot.ID
}

// Update merges patch into the record and publishes UPDATED. It returns
// false, publishing nothing, when id is unknown.
func (m *Manager) Update(ctx context.Context, id string, patch models.EventPatch) bool {
	return m.transition(ctx, id, models.TransitionUpdated, patch.Apply)
}

// Cancel marks the record CANCELLED and publishes CANCELLED. Cancelling an
// already cancelled event publishes again.
func (m *Manager) Cancel(ctx context.Context, id string) bool {
	return m.transition(ctx, id, models.TransitionCancelled, nil)
}

// Complete marks the record COMPLETED and publishes COMPLETED.
func (m *Manager) Complete(ctx context.Context, id string) bool {
	return m.transition(ctx, id, models.TransitionCompleted, nil)
}

func (m *Manager) transition(ctx context.Context, id string, kind models.TransitionKind, mutate func(*models.EventRecord)) bool {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("transition ignored",
			zap.String("event_id", id),
			zap.String("kind", string(kind)),
			zap.Error(ErrUnknownEvent))
		return false
	}
	if mutate != nil {
		mutate(rec)
	}
	rec.Status = kind.Status()
	snapshot := rec.Clone()
	m.mu.Unlock()

	m.publish(ctx, models.NewLifecycleEvent(kind, snapshot, m.clock()))
	return true
}

// publish delivers event to a snapshot of the subscriber list taken before
// the first delivery. Subscribers added or removed meanwhile take effect on
// the next event.
func (m *Manager) publish(ctx context.Context, event models.LifecycleEvent) {
	m.mu.RLock()
	subscribers := make([]Subscriber, len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.RUnlock()

	m.metrics.RecordTransition(string(event.Kind))
	m.logger.Info("🔔 notifying subscribers",
		zap.String("event_id", event.EventID),
		zap.String("title", event.Title),
		zap.String("kind", string(event.Kind)),
		zap.Int("subscribers", len(subscribers)))

	for _, s := range subscribers {
		if err := deliver(ctx, s, event.Clone()); err != nil {
			m.metrics.RecordSubscriberFailure(s.Name())
			m.logger.Error("❌ subscriber failed",
				zap.String("subscriber", s.Name()),
				zap.String("event_id", event.EventID),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	}
}

func deliver(ctx context.Context, s Subscriber, event models.LifecycleEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrSubscriberFailure, s.Name(), r)
		}
	}()
	if err := s.Update(ctx, event); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscriberFailure, s.Name(), err)
	}
	return nil
}
