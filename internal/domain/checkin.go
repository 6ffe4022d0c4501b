package domain

import (
	"fmt"
	"strings"
)

// checkinPayloadVersion prefixes every check-in payload so scanners can
// reject payloads from other systems or future format revisions.
const checkinPayloadVersion = "KIVU1"

// CheckinToken is the identity triple encoded into a participant's check-in
// QR code. It is derived, never stored: the same triple always produces the
// same payload, so tokens are regenerated identically on every read.
type CheckinToken struct {
	ParticipantID string `json:"participantId"`
	EventID       string `json:"eventId"`
	UserID        string `json:"userId"`
}

// Payload returns the deterministic scannable payload for the token.
func (t CheckinToken) Payload() string {
	return strings.Join([]string{checkinPayloadVersion, t.ParticipantID, t.EventID, t.UserID}, ":")
}

// ParseCheckinPayload parses a scanned payload back into its identity triple.
// The caller must still cross-check the triple against the live participant
// row; the payload itself carries no secret and can be forged.
func ParseCheckinPayload(payload string) (CheckinToken, error) {
	parts := strings.Split(strings.TrimSpace(payload), ":")
	if len(parts) != 4 || parts[0] != checkinPayloadVersion {
		return CheckinToken{}, fmt.Errorf("%w: malformed check-in payload", ErrInvalidInput)
	}
	t := CheckinToken{ParticipantID: parts[1], EventID: parts[2], UserID: parts[3]}
	if t.ParticipantID == "" || t.EventID == "" || t.UserID == "" {
		return CheckinToken{}, fmt.Errorf("%w: check-in payload has empty fields", ErrInvalidInput)
	}
	return t, nil
}

// CheckinEncoder renders a check-in payload as a scannable image.
type CheckinEncoder interface {
	// EncodeImage returns the payload as a base64 PNG data URI.
	EncodeImage(payload string) (string, error)
}
