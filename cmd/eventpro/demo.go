package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biyonik/eventpro/internal/analytics"
	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/internal/patterns/observer"
	"github.com/biyonik/eventpro/pkg/database"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		instant     bool
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the lifecycle, notification and certificate scenario",
		Long: `Creates a conference and a workshop, updates and completes them, and
issues certificates to a sample roster. Analytics go to the sink selected by
ANALYTICS_DRIVER (memory, sql or redis).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.runDemo(cmd.Context(), out, instant); err != nil {
				return err
			}
			if !showMetrics {
				return nil
			}
			fmt.Fprintln(out, "\n📈 metrics")
			return a.metrics.WriteText(out)
		},
	}
	cmd.Flags().BoolVar(&instant, "instant", false, "Skip simulated channel latency")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print collected counters in Prometheus text format")
	return cmd
}

// roster is the sample participant list, keyed by event title.
var roster = map[string][]models.ParticipantRecord{
	"AI Conference 2024": {
		{ID: "u-101", Name: "Ana García", Contact: "ana@example.com", AttendanceHours: 3},
		{ID: "u-102", Name: "Luis Pérez", Contact: "luis@example.com", AttendanceHours: 8},
	},
	"Go Concurrency Workshop": {
		{ID: "u-201", Name: "Marta Ruiz", Contact: "marta@example.com", AttendanceHours: 8},
		{ID: "u-202", Name: "Jon Ander", Contact: "jon@example.com", AttendanceHours: 6},
		{ID: "u-203", Name: "Sofía León", Contact: "sofia@example.com", AttendanceHours: 10},
	},
}

func (a *app) runDemo(ctx context.Context, out io.Writer, instant bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sink, closeSink, err := a.openSink(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	issuer, err := a.issuer()
	if err != nil {
		return err
	}
	dispatcher := a.dispatcher(instant)

	manager := observer.NewManager(observer.WithLogger(a.logger), observer.WithMetrics(a.metrics))
	titles := map[string]string{}
	participants := observer.ParticipantSourceFunc(func(_ context.Context, eventID string) ([]models.ParticipantRecord, error) {
		return roster[titles[eventID]], nil
	})
	report := func(_ context.Context, event models.EventRecord, certs []models.CertificateDescriptor) error {
		fmt.Fprintf(out, "\n📜 %s: %d of %d participants certified\n", event.Title, len(certs), len(roster[event.Title]))
		for _, c := range certs {
			fmt.Fprintf(out, "   %-44s %s\n", c.ID, c.VerificationCode)
		}
		return nil
	}

	manager.AddSubscriber(observer.NewEmailNotifier(dispatcher, a.logger))
	manager.AddSubscriber(observer.NewCertificateTrigger(issuer, participants, report, a.logger))
	manager.AddSubscriber(observer.NewAnalyticsRecorder(sink))

	fmt.Fprintf(out, "📋 subscribers: %s\n", strings.Join(manager.SubscriberNames(), ", "))

	conference := manager.Create(ctx, models.EventInput{
		Title:         "AI Conference 2024",
		Type:          models.EventTypeConference,
		DurationHours: 8,
		Premium:       true,
		ContactEmail:  "organizer@eventpro.local",
		Attributes: map[string]any{
			"description": "Artificial intelligence event",
			"date":        "2024-03-15",
			"capacity":    100,
		},
	})
	titles[conference] = "AI Conference 2024"

	manager.Update(ctx, conference, models.EventPatch{Attributes: map[string]any{
		"capacity": 150,
		"location": "Convention Center",
	}})
	manager.Complete(ctx, conference)

	workshop := manager.Create(ctx, models.EventInput{
		Title:         "Go Concurrency Workshop",
		Type:          models.EventTypeWorkshop,
		DurationHours: 8,
		ContactEmail:  "organizer@eventpro.local",
	})
	titles[workshop] = "Go Concurrency Workshop"
	manager.Complete(ctx, workshop)

	cancelled := manager.Create(ctx, models.EventInput{Title: "Cancelled Meetup", Type: models.EventTypeMeetup})
	manager.Cancel(ctx, cancelled)

	results := dispatcher.SendToMultiple(ctx, []string{"EMAIL", "SMS", "PUSH", "FAX"},
		"ana@example.com", "Your certificate is ready", "EventPro")
	fmt.Fprintln(out, "\n📣 multi-channel send:")
	for _, name := range []string{"EMAIL", "SMS", "PUSH", "FAX"} {
		fmt.Fprintf(out, "   %-6s %v\n", name, results[name])
	}

	if mem, ok := sink.(*analytics.MemorySink); ok {
		snap := mem.Snapshot()
		fmt.Fprintf(out, "\n📈 analytics: %d events (created %d, updated %d, cancelled %d, completed %d)\n",
			snap.Total,
			snap.ByKind[models.TransitionCreated], snap.ByKind[models.TransitionUpdated],
			snap.ByKind[models.TransitionCancelled], snap.ByKind[models.TransitionCompleted])
	}

	fmt.Fprintln(out, "\n🎉 demo complete")
	return nil
}

// openSink builds the analytics sink named by the configuration. The
// returned func releases its connections.
func (a *app) openSink(ctx context.Context) (analytics.Sink, func(), error) {
	switch a.cfg.Analytics.Driver {
	case "sql":
		db, err := database.Connect(ctx, database.Config{
			DSN:             a.cfg.DB.DSN,
			MaxOpenConns:    a.cfg.DB.MaxOpenConns,
			MaxIdleConns:    a.cfg.DB.MaxIdleConns,
			ConnMaxLifetime: a.cfg.DB.ConnMaxLifetime,
		}, a.logger)
		if err != nil {
			return nil, nil, err
		}
		sink := analytics.NewSQLSink(database.NewStore(db, a.logger))
		if err := sink.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sink, func() { db.Close() }, nil

	case "redis":
		cfg := database.DefaultRedisConfig()
		cfg.Addr = a.cfg.RedisAddr()
		cfg.Password = a.cfg.Redis.Password
		cfg.DB = a.cfg.Redis.DB
		client, err := database.NewRedisClient(ctx, cfg, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return analytics.NewRedisSink(client.Client(), a.cfg.Redis.Prefix), func() { _ = client.Close() }, nil

	default:
		a.logger.Debug("using in-memory analytics", zap.String("driver", a.cfg.Analytics.Driver))
		return analytics.NewMemorySink(), func() {}, nil
	}
}
