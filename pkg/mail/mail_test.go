package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func validMessage() *Message {
	return NewMessage().
		From("noreply@eventpro.local", "EventPro").
		To("ana@example.com", "").
		Subject("Welcome").
		Body("See you there")
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, validMessage().Validate())

	tests := []struct {
		name string
		msg  *Message
	}{
		{"missing sender", NewMessage().To("a@b.c", "").Subject("s").Body("b")},
		{"missing recipient", NewMessage().From("a@b.c", "").Subject("s").Body("b")},
		{"empty recipient", NewMessage().From("a@b.c", "").To("", "").Subject("s").Body("b")},
		{"missing subject", NewMessage().From("a@b.c", "").To("d@e.f", "").Body("b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.msg.Validate())
		})
	}
}

func TestMessage_ValidateAllowsEmptyBody(t *testing.T) {
	msg := NewMessage().From("a@b.c", "").To("d@e.f", "").Subject("s")
	assert.NoError(t, msg.Validate())
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "EventPro <noreply@eventpro.local>", Address{Email: "noreply@eventpro.local", Name: "EventPro"}.String())
	assert.Equal(t, "a@b.c", Address{Email: "a@b.c"}.String())
}

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer(zap.New(core))

	require.NoError(t, mailer.Send(validMessage().Header("X-Event-ID", "ev-1")))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Welcome", fields["subject"])
	assert.Equal(t, map[string]string{"X-Event-ID": "ev-1"}, fields["headers"])
	assert.Contains(t, fields, "date")
}

func TestLogMailer_RejectsInvalid(t *testing.T) {
	mailer := NewLogMailer(nil)
	assert.Error(t, mailer.Send(NewMessage()))
}
