package strategy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/eventpro/internal/models"
	"github.com/biyonik/eventpro/internal/observability"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func participants(hours ...float64) []models.ParticipantRecord {
	out := make([]models.ParticipantRecord, len(hours))
	for i, h := range hours {
		out[i] = models.ParticipantRecord{
			ID:              fmt.Sprintf("p%d", i+1),
			Name:            fmt.Sprintf("Participant %d", i+1),
			AttendanceHours: h,
		}
	}
	return out
}

// recordingQR remembers the sizes it was asked for.
type recordingQR struct {
	sizes []int
}

func (r *recordingQR) Generate(data string) ([]byte, error) {
	r.sizes = append(r.sizes, 256)
	return pngMagic, nil
}

func (r *recordingQR) GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error) {
	r.sizes = append(r.sizes, size)
	return pngMagic, nil
}

// countingStrategy fails for participants listed in fail and tracks how
// many generations overlap.
type countingStrategy struct {
	delay    time.Duration
	fail     map[string]bool
	panics   map[string]bool
	inflight atomic.Int32
	peak     atomic.Int32
}

func (s *countingStrategy) Name() string                 { return "counting" }
func (s *countingStrategy) Kind() models.CertificateKind { return models.CertificateStandard }

func (s *countingStrategy) Generate(ctx context.Context, p models.ParticipantRecord, e models.EventRecord) (models.CertificateDescriptor, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	time.Sleep(s.delay)
	if s.panics[p.ID] {
		panic("template missing for " + p.ID)
	}
	if s.fail[p.ID] {
		return models.CertificateDescriptor{}, errors.New("renderer offline")
	}
	return models.CertificateDescriptor{ID: "CERT-" + p.ID, ParticipantID: p.ID, EventID: e.ID}, nil
}

func TestIssuer_SelectStrategy(t *testing.T) {
	issuer := NewIssuer()

	assert.Equal(t, models.CertificateCompletion, issuer.SelectStrategy(models.EventTypeWorkshop, false).Kind())
	assert.Equal(t, models.CertificatePremium, issuer.SelectStrategy(models.EventTypeConference, true).Kind())
	assert.Equal(t, models.CertificateStandard, issuer.SelectStrategy("unknown-type", false).Kind())
	assert.Same(t, issuer.SelectStrategy(models.EventTypeCourse, false), issuer.SelectStrategy(models.EventTypeWorkshop, false))
}

func TestIssuer_WorkshopSkipsInsufficientAttendance(t *testing.T) {
	issuer := NewIssuer(WithClock(fixedClock))

	certs := issuer.IssueForEvent(context.Background(), participants(8, 6, 10), workshop(8), false)

	require.Len(t, certs, 2)
	for _, c := range certs {
		assert.True(t, strings.HasPrefix(c.ID, "CERT-COMP-"), c.ID)
	}
	assert.Equal(t, "p1", certs[0].ParticipantID)
	assert.Equal(t, "p3", certs[1].ParticipantID)
}

func TestIssuer_PremiumIgnoresAttendance(t *testing.T) {
	issuer := NewIssuer()
	event := models.EventRecord{ID: "evt-2", Type: models.EventTypeConference, DurationHours: 8}

	certs := issuer.IssueForEvent(context.Background(), participants(0, 1, 8), event, true)

	require.Len(t, certs, 3)
	for _, c := range certs {
		assert.True(t, strings.HasPrefix(c.ID, "CERT-PREM-"), c.ID)
	}
}

func TestIssuer_EmptyBatch(t *testing.T) {
	issuer := NewIssuer()
	assert.Empty(t, issuer.IssueForEvent(context.Background(), nil, workshop(8), false))
}

func TestIssuer_DetailedOutcomes(t *testing.T) {
	issuer := NewIssuer(WithClock(fixedClock))

	result := issuer.IssueForEventDetailed(context.Background(), participants(8, 6, 10), workshop(8), false)

	assert.Equal(t, "completion", result.Strategy)
	require.Len(t, result.Outcomes, 3)
	assert.NotNil(t, result.Outcomes[0].Descriptor)
	assert.ErrorIs(t, result.Outcomes[1].Err, ErrIneligibleParticipant)
	assert.Nil(t, result.Outcomes[1].Descriptor)
	assert.NotNil(t, result.Outcomes[2].Descriptor)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "p2", failed[0].ParticipantID)
}

func TestIssuer_UniqueIdentifiersWithinBatch(t *testing.T) {
	issuer := NewIssuer()
	event := models.EventRecord{ID: "evt-3", Type: models.EventTypeConference}

	certs := issuer.IssueForEvent(context.Background(), participants(1, 1, 1, 1, 1), event, false)

	ids := map[string]bool{}
	codes := map[string]bool{}
	for _, c := range certs {
		ids[c.ID] = true
		codes[c.VerificationCode] = true
	}
	assert.Len(t, ids, 5)
	assert.Len(t, codes, 5)
}

func TestIssuer_ParallelPreservesOrder(t *testing.T) {
	s := &countingStrategy{delay: 10 * time.Millisecond, fail: map[string]bool{"p4": true}}
	issuer := NewIssuer(WithConcurrency(4), WithStrategy(s))
	event := models.EventRecord{ID: "e", Type: models.EventTypeSeminar}

	result := issuer.IssueForEventDetailed(context.Background(), participants(1, 1, 1, 1, 1, 1, 1, 1), event, false)

	var got []string
	for _, c := range result.Certificates {
		got = append(got, c.ParticipantID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p5", "p6", "p7", "p8"}, got)
	for i, o := range result.Outcomes {
		assert.Equal(t, fmt.Sprintf("p%d", i+1), o.ParticipantID)
	}
	assert.Error(t, result.Outcomes[3].Err)
	assert.LessOrEqual(t, s.peak.Load(), int32(4))
	assert.Greater(t, s.peak.Load(), int32(1))
}

func TestIssuer_StrategyPanicBecomesOutcomeError(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", workers), func(t *testing.T) {
			s := &countingStrategy{panics: map[string]bool{"p2": true, "p5": true}}
			issuer := NewIssuer(WithConcurrency(workers), WithStrategy(s))
			event := models.EventRecord{ID: "e", Type: models.EventTypeSeminar}

			var result *BatchResult
			require.NotPanics(t, func() {
				result = issuer.IssueForEventDetailed(context.Background(), participants(1, 1, 1, 1, 1, 1), event, false)
			})

			assert.Len(t, result.Certificates, 4)
			failed := result.Failed()
			require.Len(t, failed, 2)
			assert.Equal(t, "p2", failed[0].ParticipantID)
			assert.Equal(t, "p5", failed[1].ParticipantID)
			for _, o := range failed {
				assert.ErrorIs(t, o.Err, ErrStrategyPanicked)
				assert.Nil(t, o.Descriptor)
			}
		})
	}
}

func TestIssuer_SequentialByDefault(t *testing.T) {
	s := &countingStrategy{delay: time.Millisecond}
	issuer := NewIssuer(WithStrategy(s))

	certs := issuer.IssueForEvent(context.Background(), participants(1, 1, 1), models.EventRecord{ID: "e"}, false)

	assert.Len(t, certs, 3)
	assert.Equal(t, int32(1), s.peak.Load())
}

func TestIssuer_CancelledContextStopsBatch(t *testing.T) {
	issuer := NewIssuer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := issuer.IssueForEventDetailed(ctx, participants(1, 2, 3), models.EventRecord{ID: "e"}, false)

	assert.Empty(t, result.Certificates)
	require.Len(t, result.Outcomes, 3)
	for _, o := range result.Outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestIssuer_IssueNilStrategyPanics(t *testing.T) {
	issuer := NewIssuer()
	assert.Panics(t, func() {
		_, _ = issuer.Issue(context.Background(), nil, models.ParticipantRecord{}, models.EventRecord{})
	})
}

func TestIssuer_QRCodes(t *testing.T) {
	rec := &recordingQR{}
	issuer := NewIssuer(WithQRCodes(rec, "https://eventpro.local/verify/"))
	event := models.EventRecord{ID: "e", Type: models.EventTypeConference}

	std := issuer.IssueForEvent(context.Background(), participants(1), event, false)
	prem := issuer.IssueForEvent(context.Background(), participants(1), event, true)

	require.Len(t, std, 1)
	require.Len(t, prem, 1)
	assert.Equal(t, pngMagic, std[0].QRCode)
	assert.Equal(t, []int{256, 512}, rec.sizes)
	assert.Equal(t, "https://eventpro.local/verify", issuer.verifyURL)
}

func TestIssuer_DefaultQRCodeGeneratorProducesPNG(t *testing.T) {
	issuer := NewIssuer(WithQRCodes(nil, "https://eventpro.local/verify"))

	certs := issuer.IssueForEvent(context.Background(), participants(1), models.EventRecord{ID: "e"}, false)

	require.Len(t, certs, 1)
	assert.True(t, bytes.HasPrefix(certs[0].QRCode, pngMagic))
}

func TestIssuer_SignedTokensVerify(t *testing.T) {
	signer, err := NewSigner("test-secret-test-secret-test-secret", "eventpro")
	require.NoError(t, err)
	issuer := NewIssuer(WithSigner(signer), WithClock(fixedClock))

	certs := issuer.IssueForEvent(context.Background(), participants(8), workshop(8), false)
	require.Len(t, certs, 1)
	require.NotEmpty(t, certs[0].VerificationToken)

	claims, err := signer.Verify(certs[0].VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, certs[0].ID, claims.CertificateID)
	assert.Equal(t, certs[0].VerificationCode, claims.VerificationCode)
	assert.Equal(t, models.CertificateCompletion, claims.Kind)
	assert.Equal(t, "p1", claims.Subject)
	assert.Equal(t, "evt-1", claims.EventID)
}

func TestSigner_RejectsForeignTokens(t *testing.T) {
	signer, _ := NewSigner("secret-one", "eventpro")
	other, _ := NewSigner("secret-two", "eventpro")
	foreignIssuer, _ := NewSigner("secret-one", "someone-else")

	cert := models.CertificateDescriptor{ID: "CERT-STD-1", Kind: models.CertificateStandard, GeneratedAt: fixedNow}
	signed, err := signer.Sign(cert)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.Error(t, err)
	_, err = foreignIssuer.Verify(signed)
	assert.Error(t, err)
	_, err = signer.Verify(signed + "x")
	assert.Error(t, err)
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	_, err := NewSigner("", "eventpro")
	assert.Error(t, err)
}

func TestIssuer_RecordsMetrics(t *testing.T) {
	m := observability.NewMetrics()
	issuer := NewIssuer(WithIssuerMetrics(m))

	issuer.IssueForEvent(context.Background(), participants(8, 6), workshop(8), false)

	count, err := testutil.GatherAndCount(m.Registry(), "eventpro_certificate_issuance_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
