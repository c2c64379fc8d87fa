package whatsapp

import (
	"crypto/subtle"
	"fmt"
)

// SubscribeMode is the hub.mode value sent by the provider during webhook
// verification.
const SubscribeMode = "subscribe"

// ErrVerificationFailed signals that the handshake must be rejected.
var ErrVerificationFailed = fmt.Errorf("webhook verification failed")

// VerifyWebhook implements the verification handshake: the challenge is
// echoed back only when mode is the subscribe value and the claimed token
// matches the configured secret exactly. Pure function, no side effects.
func VerifyWebhook(expectedToken, mode, token, challenge string) (string, error) {
	if expectedToken == "" {
		return "", ErrVerificationFailed
	}
	if mode != SubscribeMode {
		return "", ErrVerificationFailed
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
		return "", ErrVerificationFailed
	}
	return challenge, nil
}
