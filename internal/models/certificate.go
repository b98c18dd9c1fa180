// -----------------------------------------------------------------------------
// Participant & Certificate Models
// -----------------------------------------------------------------------------
// Participants are supplied by the caller per issuance batch; descriptors are
// produced by a certificate strategy and returned as-is. Neither is persisted
// by the core.
// -----------------------------------------------------------------------------

package models

import "time"

// ParticipantRecord describes one attendee of an event.
type ParticipantRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Contact         string  `json:"contact"`
	AttendanceHours float64 `json:"attendance_hours"`
}

// CertificateKind identifies the strategy that produced a certificate.
type CertificateKind string

const (
	CertificateStandard   CertificateKind = "STANDARD"
	CertificatePremium    CertificateKind = "PREMIUM"
	CertificateCompletion CertificateKind = "COMPLETION"
)

// CertificateDescriptor is the record of an issued certificate. FilePath is a
// placeholder; no document is rendered.
type CertificateDescriptor struct {
	ID                string          `json:"id"`
	Kind              CertificateKind `json:"kind"`
	ParticipantID     string          `json:"participant_id"`
	EventID           string          `json:"event_id"`
	FilePath          string          `json:"file_path"`
	VerificationCode  string          `json:"verification_code"`
	GeneratedAt       time.Time       `json:"generated_at"`
	QRCode            []byte          `json:"qr_code,omitempty"`
	VerificationToken string          `json:"verification_token,omitempty"`
}
