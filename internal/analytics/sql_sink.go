package analytics

import (
	"context"
	"fmt"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/pkg/database"
)

const (
	createTableStatement = `CREATE TABLE IF NOT EXISTS event_analytics (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	event_id VARCHAR(64) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	title VARCHAR(255) NOT NULL,
	occurred_at DATETIME(3) NOT NULL,
	INDEX idx_event_analytics_event (event_id)
)`

	insertStatement = "INSERT INTO event_analytics (event_id, kind, title, occurred_at) VALUES (?, ?, ?, ?)"
)

// SQLSink appends one row per lifecycle event through the storage
// collaborator.
type SQLSink struct {
	store *database.Store
}

func NewSQLSink(store *database.Store) *SQLSink {
	return &SQLSink{store: store}
}

// EnsureSchema creates the event_analytics table if it does not exist.
func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.store.Query(ctx, createTableStatement); err != nil {
		return fmt.Errorf("create event_analytics: %w", err)
	}
	return nil
}

func (s *SQLSink) Record(ctx context.Context, event models.LifecycleEvent) error {
	res, err := s.store.Query(ctx, insertStatement, event.EventID, string(event.Kind), event.Title, event.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("record %s for event %s: %w", event.Kind, event.EventID, err)
	}
	if res.RowCount != 1 {
		return fmt.Errorf("record %s for event %s: expected 1 row, got %d", event.Kind, event.EventID, res.RowCount)
	}
	return nil
}
