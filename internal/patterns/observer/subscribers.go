package observer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/biyonik/eventpro/internal/analytics"
	"github.com/biyonik/eventpro/internal/models"
)

// FuncSubscriber adapts a function to Subscriber.
type FuncSubscriber struct {
	name string
	fn   func(ctx context.Context, event models.LifecycleEvent) error
}

func NewFuncSubscriber(name string, fn func(ctx context.Context, event models.LifecycleEvent) error) *FuncSubscriber {
	return &FuncSubscriber{name: name, fn: fn}
}

func (s *FuncSubscriber) Name() string { return s.name }

func (s *FuncSubscriber) Update(ctx context.Context, event models.LifecycleEvent) error {
	return s.fn(ctx, event)
}

// Notifier is the part of the notification dispatcher the email notifier
// needs.
type Notifier interface {
	SendToMultiple(ctx context.Context, channelNames []string, recipient, message, subject string) map[string]bool
}

// EmailNotifier tells an event's organizer about every transition.
type EmailNotifier struct {
	notifier Notifier
	channels []string
	logger   *zap.Logger
}

// NewEmailNotifier sends through notifier on channels, EMAIL when none are
// given.
func NewEmailNotifier(notifier Notifier, logger *zap.Logger, channels ...string) *EmailNotifier {
	if len(channels) == 0 {
		channels = []string{"EMAIL"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{notifier: notifier, channels: channels, logger: logger.Named("email_notifier")}
}

func (n *EmailNotifier) Name() string { return "EmailNotifier" }

func (n *EmailNotifier) Update(ctx context.Context, event models.LifecycleEvent) error {
	recipient := event.Record.ContactEmail
	if recipient == "" {
		n.logger.Debug("no contact address, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	subject, body := composeEmail(event)
	results := n.notifier.SendToMultiple(ctx, n.channels, recipient, body, subject)

	var failed []string
	for name, ok := range results {
		if !ok {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return fmt.Errorf("notify %s about %s: failed on %s", recipient, event.Kind, strings.Join(failed, ", "))
	}
	return nil
}

func composeEmail(event models.LifecycleEvent) (subject, body string) {
	switch event.Kind {
	case models.TransitionCreated:
		return "Event created: " + event.Title,
			fmt.Sprintf("Your event %q has been created and is now open.", event.Title)
	case models.TransitionUpdated:
		return "Event updated: " + event.Title,
			fmt.Sprintf("The details of %q have changed. Please review the event page.", event.Title)
	case models.TransitionCancelled:
		return "Event cancelled: " + event.Title,
			fmt.Sprintf("%q has been cancelled.", event.Title)
	case models.TransitionCompleted:
		return "Event completed: " + event.Title,
			fmt.Sprintf("%q is complete. Certificates are being issued to eligible participants.", event.Title)
	default:
		return "Event notice: " + event.Title, fmt.Sprintf("%q: %s", event.Title, event.Kind)
	}
}

// ParticipantSource loads the participants of an event.
type ParticipantSource interface {
	Participants(ctx context.Context, eventID string) ([]models.ParticipantRecord, error)
}

// ParticipantSourceFunc adapts a function to ParticipantSource.
type ParticipantSourceFunc func(ctx context.Context, eventID string) ([]models.ParticipantRecord, error)

func (f ParticipantSourceFunc) Participants(ctx context.Context, eventID string) ([]models.ParticipantRecord, error) {
	return f(ctx, eventID)
}

// CertificateIssuer is the part of the certificate issuer the trigger needs.
type CertificateIssuer interface {
	IssueForEvent(ctx context.Context, participants []models.ParticipantRecord, event models.EventRecord, premium bool) []models.CertificateDescriptor
}

// IssuedHandler receives the certificates issued for a completed event.
type IssuedHandler func(ctx context.Context, event models.EventRecord, certs []models.CertificateDescriptor) error

// CertificateTrigger issues certificates when an event completes. Other
// transitions are ignored.
type CertificateTrigger struct {
	issuer  CertificateIssuer
	source  ParticipantSource
	handler IssuedHandler
	logger  *zap.Logger
}

// NewCertificateTrigger returns a trigger. handler may be nil.
func NewCertificateTrigger(issuer CertificateIssuer, source ParticipantSource, handler IssuedHandler, logger *zap.Logger) *CertificateTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateTrigger{issuer: issuer, source: source, handler: handler, logger: logger.Named("certificate_trigger")}
}

func (t *CertificateTrigger) Name() string { return "CertificateTrigger" }

func (t *CertificateTrigger) Update(ctx context.Context, event models.LifecycleEvent) error {
	if event.Kind != models.TransitionCompleted {
		return nil
	}

	participants, err := t.source.Participants(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("load participants for %s: %w", event.EventID, err)
	}

	certs := t.issuer.IssueForEvent(ctx, participants, event.Record, event.Record.Premium)
	t.logger.Info("📜 certificates generated",
		zap.String("event_id", event.EventID),
		zap.Int("participants", len(participants)),
		zap.Int("certificates", len(certs)))

	if t.handler == nil {
		return nil
	}
	return t.handler(ctx, event.Record, certs)
}

// AnalyticsRecorder forwards every event to an analytics sink.
type AnalyticsRecorder struct {
	sink analytics.Sink
}

func NewAnalyticsRecorder(sink analytics.Sink) *AnalyticsRecorder {
	return &AnalyticsRecorder{sink: sink}
}

func (r *AnalyticsRecorder) Name() string { return "AnalyticsRecorder" }

func (r *AnalyticsRecorder) Update(ctx context.Context, event models.LifecycleEvent) error {
	return r.sink.Record(ctx, event)
}
