package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/internal/observability"
)

// ErrStrategyPanicked wraps a panic raised by a strategy during a batch.
var ErrStrategyPanicked = errors.New("certificate strategy panicked")

// Outcome is the result of issuing to one participant: either Descriptor is
// set or Err is.
type Outcome struct {
	ParticipantID string
	Descriptor    *models.CertificateDescriptor
	Err           error
}

// BatchResult holds the certificates issued for an event in participant
// order, plus one Outcome per participant.
type BatchResult struct {
	Strategy     string
	Certificates []models.CertificateDescriptor
	Outcomes     []Outcome
}

// Failed returns the outcomes that did not produce a certificate.
func (r *BatchResult) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Issuer selects a strategy per event and issues certificates in batches.
type Issuer struct {
	strategies  map[models.CertificateKind]Strategy
	clock       Clock
	concurrency int
	signer      *Signer
	qr          QRCodeGenerator
	verifyURL   string
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithConcurrency issues up to n certificates at once. Output order is still
// participant order. Values below 1 mean sequential.
func WithConcurrency(n int) IssuerOption {
	return func(i *Issuer) {
		if n < 1 {
			n = 1
		}
		i.concurrency = n
	}
}

// WithSigner attaches a signed verification token to every certificate.
func WithSigner(s *Signer) IssuerOption {
	return func(i *Issuer) { i.signer = s }
}

// WithQRCodes renders a QR code pointing at verifyBaseURL on every
// certificate. A nil generator uses DefaultQRCodeGenerator.
func WithQRCodes(gen QRCodeGenerator, verifyBaseURL string) IssuerOption {
	return func(i *Issuer) {
		if gen == nil {
			gen = &DefaultQRCodeGenerator{}
		}
		i.qr = gen
		i.verifyURL = strings.TrimRight(verifyBaseURL, "/")
	}
}

// WithClock pins the time used by the built-in strategies.
func WithClock(clock Clock) IssuerOption {
	return func(i *Issuer) { i.clock = clock }
}

// WithStrategy replaces the built-in strategy for s.Kind().
func WithStrategy(s Strategy) IssuerOption {
	return func(i *Issuer) { i.strategies[s.Kind()] = s }
}

// WithLogger sets the issuer's logger.
func WithLogger(logger *zap.Logger) IssuerOption {
	return func(i *Issuer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithIssuerMetrics records every issuance attempt.
func WithIssuerMetrics(m *observability.Metrics) IssuerOption {
	return func(i *Issuer) { i.metrics = m }
}

// NewIssuer returns an Issuer holding one instance of each strategy.
// Strategies not overridden with WithStrategy are built with the issuer's
// clock.
//
// Example:
//
//	issuer := strategy.NewIssuer(
//	    strategy.WithConcurrency(4),
//	    strategy.WithLogger(logger))
//	certs := issuer.IssueForEvent(ctx, participants, event, event.Premium)
func NewIssuer(options ...IssuerOption) *Issuer {
	i := &Issuer{
		strategies:  make(map[models.CertificateKind]Strategy, 3),
		concurrency: 1,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(i)
	}
	i.logger = i.logger.Named("issuer")

	for _, kind := range []models.CertificateKind{
		models.CertificateStandard, models.CertificatePremium, models.CertificateCompletion,
	} {
		if _, ok := i.strategies[kind]; ok {
			continue
		}
		s, err := NewStrategy(kind, i.clock)
		if err != nil {
			panic(err)
		}
		i.strategies[kind] = s
	}
	return i
}

// SelectStrategy returns the strategy for an event type and tier.
func (i *Issuer) SelectStrategy(eventType models.EventType, premium bool) Strategy {
	return i.strategies[SelectKind(eventType, premium)]
}

// Issue generates and decorates one certificate. A nil strategy panics.
func (i *Issuer) Issue(ctx context.Context, s Strategy, participant models.ParticipantRecord, event models.EventRecord) (models.CertificateDescriptor, error) {
	if s == nil {
		panic("strategy: Issue called with nil strategy")
	}

	cert, err := s.Generate(ctx, participant, event)
	if err == nil {
		err = i.decorate(&cert)
	}
	i.metrics.RecordCertificate(s.Name(), err == nil)
	if err != nil {
		return models.CertificateDescriptor{}, err
	}
	return cert, nil
}

// IssueForEvent issues a certificate to each participant and returns the
// successful ones in participant order. Failures are logged and skipped.
func (i *Issuer) IssueForEvent(ctx context.Context, participants []models.ParticipantRecord, event models.EventRecord, premium bool) []models.CertificateDescriptor {
	return i.IssueForEventDetailed(ctx, participants, event, premium).Certificates
}

// IssueForEventDetailed is IssueForEvent with a per-participant outcome.
// The strategy is selected once for the whole batch. Once ctx is done no
// further participants are started; their outcomes carry ctx.Err().
func (i *Issuer) IssueForEventDetailed(ctx context.Context, participants []models.ParticipantRecord, event models.EventRecord, premium bool) *BatchResult {
	s := i.SelectStrategy(event.Type, premium)
	logger := i.logger.With(
		zap.String("event_id", event.ID),
		zap.String("strategy", s.Name()),
	)

	outcomes := make([]Outcome, len(participants))
	issue := func(idx int) {
		p := participants[idx]
		defer func() {
			if r := recover(); r != nil {
				i.metrics.RecordCertificate(s.Name(), false)
				outcomes[idx] = Outcome{ParticipantID: p.ID, Err: fmt.Errorf("%w: %s: %v", ErrStrategyPanicked, s.Name(), r)}
			}
		}()
		cert, err := i.Issue(ctx, s, p, event)
		outcomes[idx] = Outcome{ParticipantID: p.ID, Err: err}
		if err == nil {
			outcomes[idx].Descriptor = &cert
		}
	}

	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for idx := range participants {
		idx := idx
		if err := ctx.Err(); err != nil {
			for rest := idx; rest < len(participants); rest++ {
				outcomes[rest] = Outcome{ParticipantID: participants[rest].ID, Err: err}
			}
			break
		}
		if i.concurrency == 1 {
			issue(idx)
			continue
		}
		g.Go(func() error {
			issue(idx)
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Strategy: s.Name(), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			logFailure(logger, o)
			continue
		}
		result.Certificates = append(result.Certificates, *o.Descriptor)
	}

	logger.Info("🎓 certificates issued",
		zap.Int("participants", len(participants)),
		zap.Int("issued", len(result.Certificates)))
	return result
}

func (i *Issuer) decorate(cert *models.CertificateDescriptor) error {
	if i.qr != nil {
		png, err := renderQRCode(i.qr, cert.Kind, i.verificationURL(*cert))
		if err != nil {
			return fmt.Errorf("render qr code for %s: %w", cert.ID, err)
		}
		cert.QRCode = png
	}
	if i.signer != nil {
		signed, err := i.signer.Sign(*cert)
		if err != nil {
			return err
		}
		cert.VerificationToken = signed
	}
	return nil
}

func (i *Issuer) verificationURL(cert models.CertificateDescriptor) string {
	return i.verifyURL + "/" + url.PathEscape(cert.ID) + "?code=" + url.QueryEscape(cert.VerificationCode)
}

func logFailure(logger *zap.Logger, o Outcome) {
	if errors.Is(o.Err, ErrIneligibleParticipant) {
		logger.Warn("⚠️ participant not eligible", zap.String("participant_id", o.ParticipantID), zap.Error(o.Err))
		return
	}
	logger.Error("❌ certificate issuance failed", zap.String("participant_id", o.ParticipantID), zap.Error(o.Err))
}
