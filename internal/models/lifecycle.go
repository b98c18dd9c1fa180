package models

import "time"

// TransitionKind names a lifecycle transition.
type TransitionKind string

const (
	TransitionCreated   TransitionKind = "CREATED"
	TransitionUpdated   TransitionKind = "UPDATED"
	TransitionCancelled TransitionKind = "CANCELLED"
	TransitionCompleted TransitionKind = "COMPLETED"
)

// Status returns the record status a transition leaves behind.
func (k TransitionKind) Status() EventStatus {
	return EventStatus(k)
}

// LifecycleEvent is emitted once per transition and handed to every
// subscriber. It is a value; Record is a snapshot taken at emission time.
type LifecycleEvent struct {
	EventID   string         `json:"event_id"`
	Title     string         `json:"title"`
	Kind      TransitionKind `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Record    EventRecord    `json:"record"`
}

// NewLifecycleEvent snapshots the record for a transition.
func NewLifecycleEvent(kind TransitionKind, record EventRecord, at time.Time) LifecycleEvent {
	snapshot := record.Clone()
	return LifecycleEvent{
		EventID:   snapshot.ID,
		Title:     snapshot.Title,
		Kind:      kind,
		Timestamp: at,
		Record:    snapshot,
	}
}

// Clone returns a copy whose record shares no maps with e.
func (e LifecycleEvent) Clone() LifecycleEvent {
	e.Record = e.Record.Clone()
	return e
}
