// Package sigcrypto holds the cryptographic primitives of the signing
// workflow: document hashing, RSA key handling, signature creation and
// verification, and the Fernet encryption of stored signature images.
package sigcrypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
)

// HashDocument streams r through SHA-256 and returns the hex digest. The
// digest doubles as the document's content fingerprint and as the payload
// that certificate keys sign.
func HashDocument(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", &apperr.CryptoError{Op: "hash document", Cause: err}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile hashes the file at path without loading it into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &apperr.CryptoError{Op: "hash document", Cause: err}
	}
	defer f.Close()
	return HashDocument(f)
}
