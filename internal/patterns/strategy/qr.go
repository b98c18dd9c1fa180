package strategy

import (
	qrcode "github.com/skip2/go-qrcode"

	"github.com/biyonik/eventpro/internal/models"
)

// QRCodeGenerator renders verification data as a PNG QR code.
type QRCodeGenerator interface {
	Generate(data string) ([]byte, error)
	GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error)
}

// DefaultQRCodeGenerator implements QRCodeGenerator with go-qrcode.
type DefaultQRCodeGenerator struct{}

func (g *DefaultQRCodeGenerator) Generate(data string) ([]byte, error) {
	return qrcode.Encode(data, qrcode.Medium, 256)
}

func (g *DefaultQRCodeGenerator) GenerateWithOptions(data string, size int, level qrcode.RecoveryLevel) ([]byte, error) {
	return qrcode.Encode(data, level, size)
}

// renderQRCode picks the image size by kind: premium certificates get a
// larger, high-recovery code.
func renderQRCode(gen QRCodeGenerator, kind models.CertificateKind, data string) ([]byte, error) {
	if kind == models.CertificatePremium {
		return gen.GenerateWithOptions(data, 512, qrcode.High)
	}
	return gen.Generate(data)
}
