package qrcode

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"kivuevent/internal/domain"
)

// defaultSize is the PNG edge length in pixels. Large enough for phone
// cameras at arm's length.
const defaultSize = 256

type pngEncoder struct {
	size int
}

// NewPNGEncoder returns a CheckinEncoder that renders payloads as PNG QR
// codes wrapped in a base64 data URI, ready for an <img> src attribute.
func NewPNGEncoder() domain.CheckinEncoder {
	return &pngEncoder{size: defaultSize}
}

func (e *pngEncoder) EncodeImage(payload string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("empty check-in payload")
	}
	png, err := qr.Encode(payload, qr.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
