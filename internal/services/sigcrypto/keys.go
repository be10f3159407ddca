package sigcrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
)

// GenerateKeyPair creates an RSA-2048 keypair for a signing certificate,
// PEM encoded as PKIX public / PKCS8 private.
func GenerateKeyPair() (publicPEM, privatePEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", &apperr.CryptoError{Op: "generate keypair", Cause: err}
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", &apperr.CryptoError{Op: "encode private key", Cause: err}
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", &apperr.CryptoError{Op: "encode public key", Cause: err}
	}

	privatePEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
	publicPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	return publicPEM, privatePEM, nil
}
