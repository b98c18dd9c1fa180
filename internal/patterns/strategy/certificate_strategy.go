// -----------------------------------------------------------------------------
// Certificate Strategies
// -----------------------------------------------------------------------------
// Each strategy turns a participant and an event into a certificate
// descriptor. The issuer picks one per batch from the event type and tier:
//
//   - Standard:   every participant, short random verification code
//   - Premium:    every participant, longer derived verification code
//   - Completion: only participants who attended at least 80% of the event
//
// No document is rendered; FilePath is where one would live.
// -----------------------------------------------------------------------------

package strategy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/pkg/token"
)

// completionThreshold is the share of the event duration a participant must
// attend to earn a completion certificate.
const completionThreshold = 0.8

// ErrIneligibleParticipant is returned when a participant does not meet a
// strategy's requirements.
var ErrIneligibleParticipant = errors.New("participant is not eligible for this certificate")

// Clock returns the current time. Strategies take one so tests can pin it.
type Clock func() time.Time

// Strategy produces a certificate descriptor for one participant.
type Strategy interface {
	Name() string
	Kind() models.CertificateKind
	Generate(ctx context.Context, participant models.ParticipantRecord, event models.EventRecord) (models.CertificateDescriptor, error)
}

// SelectKind maps an event type and tier to a certificate kind. Premium
// always wins; workshops and courses require completion; every other type,
// known or not, gets a standard certificate.
func SelectKind(eventType models.EventType, premium bool) models.CertificateKind {
	if premium {
		return models.CertificatePremium
	}
	switch models.EventType(strings.ToLower(strings.TrimSpace(string(eventType)))) {
	case models.EventTypeWorkshop, models.EventTypeCourse:
		return models.CertificateCompletion
	default:
		return models.CertificateStandard
	}
}

// NewStrategy builds the strategy for kind.
func NewStrategy(kind models.CertificateKind, clock Clock) (Strategy, error) {
	if clock == nil {
		clock = time.Now
	}
	switch kind {
	case models.CertificateStandard:
		return &StandardStrategy{clock: clock}, nil
	case models.CertificatePremium:
		return &PremiumStrategy{clock: clock}, nil
	case models.CertificateCompletion:
		return &CompletionStrategy{clock: clock}, nil
	default:
		return nil, fmt.Errorf("unknown certificate kind %q", kind)
	}
}

// StandardStrategy issues a certificate to every participant.
type StandardStrategy struct {
	clock Clock
}

func (s *StandardStrategy) Name() string                 { return "standard" }
func (s *StandardStrategy) Kind() models.CertificateKind { return models.CertificateStandard }

func (s *StandardStrategy) Generate(ctx context.Context, participant models.ParticipantRecord, event models.EventRecord) (models.CertificateDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.CertificateDescriptor{}, err
	}

	suffix, err := token.GenerateHex(8)
	if err != nil {
		return models.CertificateDescriptor{}, fmt.Errorf("standard certificate id: %w", err)
	}
	code, err := token.GenerateCode(6)
	if err != nil {
		return models.CertificateDescriptor{}, fmt.Errorf("standard verification code: %w", err)
	}

	id := "CERT-STD-" + suffix
	return models.CertificateDescriptor{
		ID:               id,
		Kind:             models.CertificateStandard,
		ParticipantID:    participant.ID,
		EventID:          event.ID,
		FilePath:         "/certificates/standard/" + id + ".pdf",
		VerificationCode: "STD-" + code,
		GeneratedAt:      s.clock(),
	}, nil
}

// PremiumStrategy issues a certificate to every participant. Its
// verification code carries the issue time and a keyed BLAKE2b digest, so it
// can never be mistaken for a standard code.
type PremiumStrategy struct {
	clock Clock
}

func (s *PremiumStrategy) Name() string                 { return "premium" }
func (s *PremiumStrategy) Kind() models.CertificateKind { return models.CertificatePremium }

func (s *PremiumStrategy) Generate(ctx context.Context, participant models.ParticipantRecord, event models.EventRecord) (models.CertificateDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.CertificateDescriptor{}, err
	}

	now := s.clock()
	suffix, err := token.GenerateHex(8)
	if err != nil {
		return models.CertificateDescriptor{}, fmt.Errorf("premium certificate id: %w", err)
	}
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	digest, err := token.DeriveCode(12, participant.ID, event.ID, millis)
	if err != nil {
		return models.CertificateDescriptor{}, fmt.Errorf("premium verification code: %w", err)
	}

	id := "CERT-PREM-" + suffix
	return models.CertificateDescriptor{
		ID:               id,
		Kind:             models.CertificatePremium,
		ParticipantID:    participant.ID,
		EventID:          event.ID,
		FilePath:         "/certificates/premium/" + id + ".pdf",
		VerificationCode: "PREM-" + millis + "-" + digest,
		GeneratedAt:      now,
	}, nil
}

// CompletionStrategy issues a certificate only when the participant attended
// at least 80% of the event's duration.
type CompletionStrategy struct {
	clock Clock
}

func (s *CompletionStrategy) Name() string                 { return "completion" }
func (s *CompletionStrategy) Kind() models.CertificateKind { return models.CertificateCompletion }

func (s *CompletionStrategy) Generate(ctx context.Context, participant models.ParticipantRecord, event models.EventRecord) (models.CertificateDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.CertificateDescriptor{}, err
	}

	required := event.DurationHours * completionThreshold
	if participant.AttendanceHours < required {
		return models.CertificateDescriptor{}, fmt.Errorf("%w: attended %.1fh of required %.1fh",
			ErrIneligibleParticipant, participant.AttendanceHours, required)
	}

	now := s.clock()
	code, err := token.GenerateCode(4)
	if err != nil {
		return models.CertificateDescriptor{}, fmt.Errorf("completion verification code: %w", err)
	}

	base := fmt.Sprintf("%s-%s-%d", participant.ID, event.ID, now.Year())
	id := "CERT-COMP-" + base
	return models.CertificateDescriptor{
		ID:               id,
		Kind:             models.CertificateCompletion,
		ParticipantID:    participant.ID,
		EventID:          event.ID,
		FilePath:         "/certificates/completion/" + id + ".pdf",
		VerificationCode: "COMP-" + base + "-" + code,
		GeneratedAt:      now,
	}, nil
}
