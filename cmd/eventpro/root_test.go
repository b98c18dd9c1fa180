package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/internal/patterns/strategy"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ANALYTICS_DRIVER", "memory")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestChannelsCommand(t *testing.T) {
	out, err := runCLI(t, "channels")
	require.NoError(t, err)
	assert.Equal(t, "EMAIL\nSMS\nPUSH\n", out)
}

func TestDemoCommand(t *testing.T) {
	out, err := runCLI(t, "demo", "--instant")
	require.NoError(t, err)

	assert.Contains(t, out, "subscribers: EmailNotifier, CertificateTrigger, AnalyticsRecorder")
	assert.Contains(t, out, "AI Conference 2024: 2 of 2 participants certified")
	assert.Contains(t, out, "Go Concurrency Workshop: 2 of 3 participants certified")
	assert.Equal(t, 2, strings.Count(out, "CERT-PREM-"))
	assert.Equal(t, 2, strings.Count(out, "CERT-COMP-"))
	assert.Contains(t, out, "FAX    false")
	assert.Contains(t, out, "analytics: 7 events (created 3, updated 1, cancelled 1, completed 2)")
}

func TestDemoCommandPrintsMetrics(t *testing.T) {
	out, err := runCLI(t, "demo", "--instant", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "# TYPE eventpro_lifecycle_transitions_total counter")
	assert.Contains(t, out, `eventpro_lifecycle_transitions_total{kind="COMPLETED"} 2`)
	assert.Contains(t, out, `eventpro_notification_sends_total{channel="UNSUPPORTED",result="failure"} 1`)
	assert.Contains(t, out, "eventpro_certificate_issuance_total")

	plain, err := runCLI(t, "demo", "--instant")
	require.NoError(t, err)
	assert.NotContains(t, plain, "eventpro_lifecycle_transitions_total")
}

func TestVerifyCommand(t *testing.T) {
	signer, err := strategy.NewSigner("change-me-certificate-signing-secret", "eventpro")
	require.NoError(t, err)
	token, err := signer.Sign(models.CertificateDescriptor{
		ID:               "CERT-STD-0011223344556677",
		Kind:             models.CertificateStandard,
		ParticipantID:    "u-101",
		EventID:          "evt-1",
		VerificationCode: "STD-ABCDEF012345",
	})
	require.NoError(t, err)

	out, err := runCLI(t, "verify", token)
	require.NoError(t, err)
	assert.Contains(t, out, "CERT-STD-0011223344556677")
	assert.Contains(t, out, "u-101")

	_, err = runCLI(t, "verify", token+"tampered")
	assert.Error(t, err)
}

func TestUnknownAnalyticsDriverFails(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("ANALYTICS_DRIVER", "kafka")

	root := newRootCmd()
	root.SetArgs([]string{"channels"})
	root.SetOut(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
