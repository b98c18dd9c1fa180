package analytics

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/biyonik/eventpro/internal/models"
)

// RedisSink increments two hash counters per event: one keyed by event id
// and one holding totals across all events. Both writes share a pipeline.
type RedisSink struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSink returns a sink writing keys under prefix (e.g. "eventpro:").
func NewRedisSink(client redis.Cmdable, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Record(ctx context.Context, event models.LifecycleEvent) error {
	kind := string(event.Kind)

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.EventKey(event.EventID), kind, 1)
		pipe.HIncrBy(ctx, s.TotalsKey(), kind, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis analytics for event %s: %w", event.EventID, err)
	}
	return nil
}

// Counts returns the per-kind counters recorded for one event.
func (s *RedisSink) Counts(ctx context.Context, eventID string) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.EventKey(eventID)).Result()
}

// EventKey is the hash holding counters for one event.
func (s *RedisSink) EventKey(eventID string) string {
	return s.prefix + "analytics:event:" + eventID
}

// TotalsKey is the hash holding counters across all events.
func (s *RedisSink) TotalsKey() string {
	return s.prefix + "analytics:totals"
}
