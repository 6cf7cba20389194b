package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrBadSignature = errors.New("webhook signature mismatch")

// WebhookVerifier authenticates an inbound provider notification before the
// reconciler gets to see it. Verification happens on the raw body, never on
// the parsed form.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) error
}

type hmacWebhookVerifier struct {
	secret []byte
}

// NewHMACWebhookVerifier verifies hex-encoded HMAC-SHA256 signatures
// computed over the raw request body.
func NewHMACWebhookVerifier(secret string) WebhookVerifier {
	return &hmacWebhookVerifier{secret: []byte(secret)}
}

func (v *hmacWebhookVerifier) Verify(payload []byte, signature string) error {
	if signature == "" {
		return ErrBadSignature
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)

	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrBadSignature
	}
	return nil
}

type allowAllWebhookVerifier struct{}

// NewAllowAllWebhookVerifier accepts everything. Only wired up when no
// webhook secret is configured (local development).
func NewAllowAllWebhookVerifier() WebhookVerifier {
	return &allowAllWebhookVerifier{}
}

func (v *allowAllWebhookVerifier) Verify(payload []byte, signature string) error {
	return nil
}
