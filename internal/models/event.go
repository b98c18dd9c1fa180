// -----------------------------------------------------------------------------
// Event Model
// -----------------------------------------------------------------------------
// An event record (conference, workshop, course, ...) owned by the lifecycle
// manager. Records are only mutated through lifecycle transitions; callers
// always receive deep copies.
// -----------------------------------------------------------------------------

package models

import (
	"strings"
)

// EventType is the kind of event being organised.
type EventType string

const (
	EventTypeConference EventType = "conference"
	EventTypeSeminar    EventType = "seminar"
	EventTypeWorkshop   EventType = "workshop"
	EventTypeWebinar    EventType = "webinar"
	EventTypeCourse     EventType = "course"
	EventTypeMeetup     EventType = "meetup"
	EventTypeOther      EventType = "other"
)

// ParseEventType normalises a free-form type name. Unknown names map to
// EventTypeOther.
func ParseEventType(name string) EventType {
	switch t := EventType(strings.ToLower(strings.TrimSpace(name))); t {
	case EventTypeConference, EventTypeSeminar, EventTypeWorkshop,
		EventTypeWebinar, EventTypeCourse, EventTypeMeetup:
		return t
	default:
		return EventTypeOther
	}
}

// EventStatus is the current lifecycle state of an event record.
type EventStatus string

const (
	EventStatusCreated   EventStatus = "CREATED"
	EventStatusUpdated   EventStatus = "UPDATED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// EventRecord is a single event held by the lifecycle manager.
type EventRecord struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Type          EventType      `json:"type"`
	DurationHours float64        `json:"duration_hours"`
	Status        EventStatus    `json:"status"`
	Premium       bool           `json:"premium"`
	ContactEmail  string         `json:"contact_email,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the record. Attribute values are copied
// shallowly.
func (e EventRecord) Clone() EventRecord {
	out := e
	if e.Attributes != nil {
		out.Attributes = make(map[string]any, len(e.Attributes))
		for k, v := range e.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// EventInput is the payload used to create a new event record.
type EventInput struct {
	Title         string
	Type          EventType
	DurationHours float64
	Premium       bool
	ContactEmail  string
	Attributes    map[string]any // description, dates, capacity, ...
}

// EventPatch is a partial update. Nil fields are left untouched and
// Attributes are merged key by key over the existing ones.
type EventPatch struct {
	Title         *string
	Type          *EventType
	DurationHours *float64
	Premium       *bool
	ContactEmail  *string
	Attributes    map[string]any
}

// Apply merges the patch into the record in place.
func (p EventPatch) Apply(e *EventRecord) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Type != nil {
		e.Type = ParseEventType(string(*p.Type))
	}
	if p.DurationHours != nil {
		e.DurationHours = *p.DurationHours
	}
	if p.Premium != nil {
		e.Premium = *p.Premium
	}
	if p.ContactEmail != nil {
		e.ContactEmail = *p.ContactEmail
	}
	if len(p.Attributes) > 0 {
		if e.Attributes == nil {
			e.Attributes = make(map[string]any, len(p.Attributes))
		}
		for k, v := range p.Attributes {
			e.Attributes[k] = v
		}
	}
}
