package factory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/biyonik/eventpro/internal/observability"
)

const (
	defaultSendTimeout = 5 * time.Second

	// unsupportedLabel keeps caller-supplied names out of metric labels.
	unsupportedLabel = "UNSUPPORTED"
)

// Dispatcher resolves a channel by name and delivers through it. No send
// error crosses this boundary: every outcome is reported as a bool.
type Dispatcher struct {
	channels map[ChannelKind]Channel
	limiters map[ChannelKind]*rate.Limiter
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithChannel replaces the built-in implementation for ch.Kind().
func WithChannel(ch Channel) Option {
	return func(d *Dispatcher) {
		d.channels[ch.Kind()] = ch
	}
}

// WithSendTimeout bounds every send, including the rate limiter wait.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithRateLimit throttles each channel independently.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *Dispatcher) {
		for _, kind := range supportedChannels {
			d.limiters[kind] = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithMetrics records every send outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher builds the three built-in channels from opts and applies
// options on top.
//
// Example:
//
//	dispatcher := factory.NewDispatcher(factory.ChannelOptions{Logger: logger},
//	    factory.WithSendTimeout(2*time.Second),
//	    factory.WithRateLimit(50, 10))
//	ok := dispatcher.Send(ctx, "email", "ana@example.com", "Welcome!", "Registration")
func NewDispatcher(opts ChannelOptions, options ...Option) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		channels: make(map[ChannelKind]Channel, len(supportedChannels)),
		limiters: make(map[ChannelKind]*rate.Limiter, len(supportedChannels)),
		timeout:  defaultSendTimeout,
		logger:   logger.Named("dispatcher"),
	}

	for _, kind := range supportedChannels {
		ch, err := NewChannel(kind, opts)
		if err != nil {
			// supportedChannels and NewChannel must agree.
			panic(err)
		}
		d.channels[kind] = ch
		d.limiters[kind] = rate.NewLimiter(rate.Inf, 1)
	}

	for _, opt := range options {
		opt(d)
	}
	return d
}

// Send delivers message to recipient over the named channel. Unknown names,
// channel errors, panics and timeouts all yield false.
func (d *Dispatcher) Send(ctx context.Context, channelName, recipient, message, subject string) bool {
	kind, err := ParseChannel(channelName)
	if err != nil {
		d.logger.Error("❌ notification not sent", zap.String("channel", channelName), zap.Error(err))
		d.metrics.RecordNotification(unsupportedLabel, false)
		return false
	}

	req := Request{Channel: kind, Recipient: recipient, Message: message, Subject: subject}
	err = d.send(ctx, kind, req)
	d.metrics.RecordNotification(string(kind), err == nil)
	if err != nil {
		d.logger.Error("❌ notification failed",
			zap.String("channel", string(kind)),
			zap.String("recipient", recipient),
			zap.Error(err))
		return false
	}
	return true
}

// SendToMultiple sends independently on every requested channel. The result
// has one entry per requested name, keyed exactly as requested.
func (d *Dispatcher) SendToMultiple(ctx context.Context, channelNames []string, recipient, message, subject string) map[string]bool {
	results := make(map[string]bool, len(channelNames))
	for _, name := range channelNames {
		results[name] = d.Send(ctx, name, recipient, message, subject)
	}
	return results
}

// SupportedChannels lists channel names in a stable order.
func (d *Dispatcher) SupportedChannels() []string {
	names := make([]string, len(supportedChannels))
	for i, kind := range supportedChannels {
		names[i] = string(kind)
	}
	return names
}

func (d *Dispatcher) send(ctx context.Context, kind ChannelKind, req Request) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiters[kind].Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return deliver(ctx, d.channels[kind], req)
}

func deliver(ctx context.Context, ch Channel, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panicked: %v", ch.Kind(), r)
		}
	}()
	return ch.Send(ctx, req)
}
