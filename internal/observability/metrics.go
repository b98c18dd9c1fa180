// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------
// Prometheus counters for the lifecycle / notification / certificate core.
// Each Metrics value owns its registry so several instances (tests, demo) can
// coexist. All methods are nil-safe: components built without metrics simply
// skip recording.
// -----------------------------------------------------------------------------

package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "eventpro"

// Metrics holds the core's counters.
type Metrics struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	subscriberFailures *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	certificates       *prometheus.CounterVec
}

// NewMetrics creates and registers all counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions applied, by kind.",
		}, []string{"kind"}),
		subscriberFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "subscriber_failures_total",
			Help:      "Subscriber errors or panics caught during fan-out.",
		}, []string{"subscriber"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "sends_total",
			Help:      "Notification sends, by channel and result.",
		}, []string{"channel", "result"}),
		certificates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "certificate",
			Name:      "issuance_total",
			Help:      "Certificate issuance attempts, by strategy and result.",
		}, []string{"strategy", "result"}),
	}

	m.registry.MustRegister(m.transitions, m.subscriberFailures, m.notifications, m.certificates)
	return m
}

// Registry exposes the underlying registry, e.g. for promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteText writes every gathered family in the Prometheus text exposition
// format. A nil Metrics writes nothing.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// RecordTransition counts one lifecycle transition.
func (m *Metrics) RecordTransition(kind string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind).Inc()
}

// RecordSubscriberFailure counts one failed subscriber invocation.
func (m *Metrics) RecordSubscriberFailure(subscriber string) {
	if m == nil {
		return
	}
	m.subscriberFailures.WithLabelValues(subscriber).Inc()
}

// RecordNotification counts one send attempt.
func (m *Metrics) RecordNotification(channel string, ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, result(ok)).Inc()
}

// RecordCertificate counts one issuance attempt.
func (m *Metrics) RecordCertificate(strategy string, ok bool) {
	if m == nil {
		return
	}
	m.certificates.WithLabelValues(strategy, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
