package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordTransition("CREATED")
	m.RecordTransition("CREATED")
	m.RecordSubscriberFailure("AnalyticsRecorder")
	m.RecordNotification("EMAIL", true)
	m.RecordNotification("EMAIL", false)
	m.RecordCertificate("COMPLETION", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("CREATED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscriberFailures.WithLabelValues("AnalyticsRecorder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("EMAIL", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("EMAIL", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.certificates.WithLabelValues("COMPLETION", "success")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordTransition("CREATED")
		m.RecordSubscriberFailure("x")
		m.RecordNotification("SMS", true)
		m.RecordCertificate("STANDARD", false)
	})
	assert.Nil(t, m.Registry())
}

func TestNewLogger_UnknownLevelFallsBack(t *testing.T) {
	logger, err := NewLogger("chatty")
	if assert.NoError(t, err) {
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestMetrics_WriteText(t *testing.T) {
	m := NewMetrics()
	m.RecordTransition("COMPLETED")
	m.RecordNotification("SMS", false)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE eventpro_lifecycle_transitions_total counter")
	assert.Contains(t, out, `eventpro_lifecycle_transitions_total{kind="COMPLETED"} 1`)
	assert.Contains(t, out, `eventpro_notification_sends_total{channel="SMS",result="failure"} 1`)

	var nilMetrics *Metrics
	assert.NoError(t, nilMetrics.WriteText(&buf))
}
