// -----------------------------------------------------------------------------
// Notification Channels
// -----------------------------------------------------------------------------
// The three notification transports behind one Send contract. There is no
// real network transport: each channel simulates its latency, logs what it
// would deliver and succeeds unless its context ends first.
//
// Channel selection is a closed set (ChannelKind); NewChannel is the single
// exhaustive mapping from kind to implementation.
// -----------------------------------------------------------------------------

package factory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/biyonik/eventpro/pkg/mail"
)

// ChannelKind identifies a notification transport.
type ChannelKind string

const (
	ChannelEmail ChannelKind = "EMAIL"
	ChannelSMS   ChannelKind = "SMS"
	ChannelPush  ChannelKind = "PUSH"
)

// supportedChannels is the discovery order reported to callers.
var supportedChannels = []ChannelKind{ChannelEmail, ChannelSMS, ChannelPush}

// ErrUnsupportedChannel is returned for channel names outside the known set.
var ErrUnsupportedChannel = errors.New("unsupported notification channel")

// ParseChannel resolves a channel name case-insensitively. Surrounding
// whitespace is not stripped.
func ParseChannel(name string) (ChannelKind, error) {
	switch k := ChannelKind(strings.ToUpper(name)); k {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChannel, name)
	}
}

// Request is one notification to deliver. Subject is optional; Email uses it
// as the subject line, Push as the title, SMS ignores it.
type Request struct {
	Channel   ChannelKind
	Recipient string
	Message   string
	Subject   string
}

// Channel delivers a notification over one transport. A nil error means the
// notification was accepted.
type Channel interface {
	Kind() ChannelKind
	Send(ctx context.Context, req Request) error
}

// ChannelOptions configures the built-in channels.
type ChannelOptions struct {
	Mailer     mail.Mailer
	From       mail.Address
	EmailDelay time.Duration
	SMSDelay   time.Duration
	PushDelay  time.Duration
	Logger     *zap.Logger
}

const (
	defaultFromAddress = "noreply@eventpro.local"
	defaultSubject     = "EventPro notification"
	channelHeader      = "X-EventPro-Channel"
	defaultPushTitle   = "EventPro"
)

// NewChannel builds the channel for kind.
func NewChannel(kind ChannelKind, opts ChannelOptions) (Channel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch kind {
	case ChannelEmail:
		mailer := opts.Mailer
		if mailer == nil {
			mailer = mail.NewLogMailer(logger)
		}
		from := opts.From
		if from.Email == "" {
			from.Email = defaultFromAddress
		}
		return &EmailChannel{mailer: mailer, from: from, delay: opts.EmailDelay, logger: logger.Named("email")}, nil
	case ChannelSMS:
		return &SMSChannel{delay: opts.SMSDelay, logger: logger.Named("sms")}, nil
	case ChannelPush:
		return &PushChannel{delay: opts.PushDelay, logger: logger.Named("push")}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChannel, kind)
	}
}

// EmailChannel hands a mail.Message to a Mailer.
type EmailChannel struct {
	mailer mail.Mailer
	from   mail.Address
	delay  time.Duration
	logger *zap.Logger
}

func (c *EmailChannel) Kind() ChannelKind { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, req Request) error {
	if req.Recipient == "" {
		return errors.New("email recipient is required")
	}
	subject := req.Subject
	if subject == "" {
		subject = defaultSubject
	}

	c.logger.Info("📧 sending email", zap.String("to", req.Recipient), zap.String("subject", subject))

	if err := simulateLatency(ctx, c.delay); err != nil {
		return err
	}

	msg := mail.NewMessage().
		From(c.from.Email, c.from.Name).
		To(req.Recipient, "").
		Subject(subject).
		Body(req.Message).
		Header(channelHeader, string(ChannelEmail))
	if err := c.mailer.Send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	c.logger.Info("✅ email sent", zap.String("to", req.Recipient))
	return nil
}

// SMSChannel simulates a text message gateway.
type SMSChannel struct {
	delay  time.Duration
	logger *zap.Logger
}

func (c *SMSChannel) Kind() ChannelKind { return ChannelSMS }

func (c *SMSChannel) Send(ctx context.Context, req Request) error {
	if req.Recipient == "" {
		return errors.New("sms recipient is required")
	}

	c.logger.Info("📱 sending sms", zap.String("to", req.Recipient), zap.String("message", req.Message))

	if err := simulateLatency(ctx, c.delay); err != nil {
		return err
	}

	c.logger.Info("✅ sms sent", zap.String("to", req.Recipient))
	return nil
}

// PushChannel simulates a push notification provider.
type PushChannel struct {
	delay  time.Duration
	logger *zap.Logger
}

func (c *PushChannel) Kind() ChannelKind { return ChannelPush }

func (c *PushChannel) Send(ctx context.Context, req Request) error {
	if req.Recipient == "" {
		return errors.New("push recipient is required")
	}
	title := req.Subject
	if title == "" {
		title = defaultPushTitle
	}

	c.logger.Info("🔔 sending push notification",
		zap.String("to", req.Recipient),
		zap.String("title", title),
		zap.String("message", req.Message))

	if err := simulateLatency(ctx, c.delay); err != nil {
		return err
	}

	c.logger.Info("✅ push notification sent", zap.String("to", req.Recipient))
	return nil
}

// simulateLatency waits d or until ctx is done.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
