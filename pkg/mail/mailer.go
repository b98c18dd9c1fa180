// -----------------------------------------------------------------------------
// Mail Package
// -----------------------------------------------------------------------------
// Mailer is the seam between the email notification channel and whatever
// actually delivers mail. The core ships only LogMailer: messages are
// validated and written to the structured log, never transmitted.
// -----------------------------------------------------------------------------

package mail

import (
	"fmt"

	"go.uber.org/zap"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(message *Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer. A nil logger discards output.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.Named("mail")}
}

// Send validates the message and logs it.
func (m *LogMailer) Send(message *Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("message validation failed: %w", err)
	}

	to := make([]string, 0, len(message.GetTo()))
	for _, addr := range message.GetTo() {
		to = append(to, addr.String())
	}

	m.logger.Info("📧 email (log driver, not sent)",
		zap.String("from", message.GetFrom().String()),
		zap.Strings("to", to),
		zap.String("subject", message.GetSubject()),
		zap.String("body", message.GetBody()),
		zap.Any("headers", message.GetHeaders()),
		zap.Time("date", message.GetDate()),
	)
	return nil
}
