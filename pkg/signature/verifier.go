// Package signature authenticates inbound interaction requests with Ed25519.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

const logPrefix = "signature:verifier"

// Header names carrying the request signature and timestamp.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// ErrInvalidSignature is returned for every verification failure, including
// malformed or wrongly sized hex input.
var ErrInvalidSignature = errors.New("invalid request signature")

// Verifier checks request signatures against the application's public key.
type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier decodes the hex-encoded public key. A malformed key is a
// configuration error and is reported here rather than on every request.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%s - public key is not valid hex: %w", logPrefix, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%s - public key must be %d bytes, got %d", logPrefix, ed25519.PublicKeySize, len(key))
	}
	return &Verifier{publicKey: ed25519.PublicKey(key)}, nil
}

// Verify reports whether signatureHex is a valid signature of timestamp
// immediately followed by body.
func (v *Verifier) Verify(timestamp, signatureHex string, body []byte) error {
	if v == nil || len(v.publicKey) != ed25519.PublicKeySize {
		return ErrInvalidSignature
	}
	if timestamp == "" || signatureHex == "" {
		return ErrInvalidSignature
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	if !ed25519.Verify(v.publicKey, msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign produces the hex signature Verify expects. It is used by tooling and
// tests that need to build signed requests.
func Sign(privateKey ed25519.PrivateKey, timestamp string, body []byte) string {
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return hex.EncodeToString(ed25519.Sign(privateKey, msg))
}
