package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/biyonik/eventpro/internal/models"
)

// CertificateClaims is the payload of a certificate verification token.
type CertificateClaims struct {
	CertificateID    string                 `json:"cid"`
	Kind             models.CertificateKind `json:"kind"`
	EventID          string                 `json:"eid"`
	VerificationCode string                 `json:"code"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 verification tokens for certificates.
// Tokens do not expire; a certificate stays verifiable for good.
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner returns a Signer. The secret must not be empty.
func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("certificate signing secret is required")
	}
	return &Signer{secret: []byte(secret), issuer: issuer}, nil
}

// Sign returns a token binding the descriptor's id, kind, event and code to
// its participant.
func (s *Signer) Sign(cert models.CertificateDescriptor) (string, error) {
	claims := CertificateClaims{
		CertificateID:    cert.ID,
		Kind:             cert.Kind,
		EventID:          cert.EventID,
		VerificationCode: cert.VerificationCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  s.issuer,
			Subject: cert.ParticipantID,
			ID:      cert.ID,
		},
	}
	if !cert.GeneratedAt.IsZero() {
		claims.IssuedAt = jwt.NewNumericDate(cert.GeneratedAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign certificate %s: %w", cert.ID, err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims. Tampered tokens, foreign
// issuers and non-HMAC algorithms are rejected.
func (s *Signer) Verify(tokenString string) (*CertificateClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(time.Minute),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &CertificateClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify certificate token: %w", err)
	}

	claims, ok := parsed.Claims.(*CertificateClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid certificate token")
	}
	return claims, nil
}
