package sigcrypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/util"
)

// RSA-PSS is used on both the signing and the verifying side.

// SignHash signs the UTF-8 bytes of a hex document hash with a PEM private
// key and returns the signature hex encoded.
func SignHash(hashHex, privateKeyPEM string) (string, error) {
	key, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(hashHex))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], nil)
	if err != nil {
		return "", &apperr.CryptoError{Op: "sign hash", Cause: err}
	}
	return hex.EncodeToString(sig), nil
}

// VerifySignature checks signature (base64 or hex encoded) against the hex
// document hash using a PEM public key. A nil return means the signature is
// authentic; any other outcome carries the reason.
func VerifySignature(signature, hashHex, publicKeyPEM string) error {
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return err
	}
	sig, err := decodeSignature(signature)
	if err != nil {
		return err
	}
	digest := sha256.Sum256([]byte(hashHex))
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, nil); err != nil {
		return &apperr.CryptoError{Op: "verify signature", Cause: err}
	}
	return nil
}

// decodeSignature accepts both encodings that have appeared in stored
// signature rows: base64 (older rows) and hex (SignHash output).
func decodeSignature(signature string) ([]byte, error) {
	if util.IsLikelyHex(signature) {
		if b, err := hex.DecodeString(signature); err == nil {
			return b, nil
		}
	}
	b, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil, &apperr.CryptoError{Op: "decode signature", Cause: err}
	}
	return b, nil
}

func parsePrivateKey(keyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, &apperr.CryptoError{Op: "parse private key", Cause: errors.New("no PEM block")}
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, &apperr.CryptoError{Op: "parse private key", Cause: err}
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, &apperr.CryptoError{Op: "parse private key", Cause: errors.New("not an RSA key")}
	}
	return key, nil
}

func parsePublicKey(keyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, &apperr.CryptoError{Op: "parse public key", Cause: errors.New("no PEM block")}
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &apperr.CryptoError{Op: "parse public key", Cause: err}
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, &apperr.CryptoError{Op: "parse public key", Cause: errors.New("not an RSA key")}
	}
	return pub, nil
}
