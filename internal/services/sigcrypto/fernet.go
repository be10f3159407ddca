package sigcrypto

import (
	"errors"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
)

// Fernet tokens start with the version byte 0x80, which base64url encodes
// to this prefix. Sniffing it keeps Encrypt idempotent and lets Decrypt
// pass legacy plaintext rows through unchanged.
const encryptedPrefix = "gAAAAA"

// Encryptor protects saved signature images at rest.
type Encryptor struct {
	key *fernet.Key
}

// NewEncryptor builds an Encryptor from a base64 urlsafe key string. An
// empty key is a configuration error, not a crypto failure.
func NewEncryptor(key string) (*Encryptor, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.Validation("signature encryption key is not configured")
	}
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, &apperr.CryptoError{Op: "decode encryption key", Cause: err}
	}
	return &Encryptor{key: k}, nil
}

// IsEncrypted reports whether payload is already a Fernet envelope.
func IsEncrypted(payload string) bool {
	return strings.HasPrefix(payload, encryptedPrefix)
}

// Encrypt returns the Fernet envelope for plaintext. Already-encrypted
// input is returned as-is, so encrypting twice is a no-op.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	plaintext = strings.TrimSpace(plaintext)
	if IsEncrypted(plaintext) {
		return plaintext, nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", &apperr.CryptoError{Op: "encrypt signature", Cause: err}
	}
	return string(tok), nil
}

// Decrypt opens a Fernet envelope. Rows written before encryption was
// introduced are stored as plaintext and returned unchanged.
func (e *Encryptor) Decrypt(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if !IsEncrypted(payload) {
		return payload, nil
	}
	msg := fernet.VerifyAndDecrypt([]byte(payload), 0, []*fernet.Key{e.key})
	if msg == nil {
		return "", &apperr.CryptoError{Op: "decrypt signature", Cause: errors.New("invalid token or wrong key")}
	}
	return string(msg), nil
}
