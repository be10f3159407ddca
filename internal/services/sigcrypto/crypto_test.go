package sigcrypto

import (
	"strings"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDocument(t *testing.T) {
	hash, err := HashDocument(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)
}

func TestSignAndVerifyRoundtrip(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Contains(t, pub, "PUBLIC KEY")
	assert.Contains(t, priv, "PRIVATE KEY")

	hash, err := HashDocument(strings.NewReader("contract body"))
	require.NoError(t, err)

	sig, err := SignHash(hash, priv)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	assert.NoError(t, VerifySignature(sig, hash, pub))
}

func TestVerifyRejectsTamperedHash(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	hash, _ := HashDocument(strings.NewReader("original"))
	otherHash, _ := HashDocument(strings.NewReader("tampered"))

	sig, err := SignHash(hash, priv)
	require.NoError(t, err)

	assert.Error(t, VerifySignature(sig, otherHash, pub))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	otherPub, _, err := GenerateKeyPair()
	require.NoError(t, err)

	hash, _ := HashDocument(strings.NewReader("doc"))
	sig, err := SignHash(hash, priv)
	require.NoError(t, err)

	assert.Error(t, VerifySignature(sig, hash, otherPub))
}

func TestVerifyRejectsGarbageSignature(t *testing.T) {
	pub, _, err := GenerateKeyPair()
	require.NoError(t, err)
	hash, _ := HashDocument(strings.NewReader("doc"))

	assert.Error(t, VerifySignature("not-a-signature!!", hash, pub))
}

func TestSignRejectsBadKey(t *testing.T) {
	_, err := SignHash("abcd", "not a pem key")
	assert.Error(t, err)
}

func testKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	return k.Encode()
}

func TestEncryptorRoundtrip(t *testing.T) {
	enc, err := NewEncryptor(testKey(t))
	require.NoError(t, err)

	plaintext := "data:image/png;base64,iVBORw0KGgo="
	token, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(token))
	assert.NotEqual(t, plaintext, token)

	got, err := enc.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncryptIsIdempotent(t *testing.T) {
	enc, err := NewEncryptor(testKey(t))
	require.NoError(t, err)

	once, err := enc.Encrypt("payload")
	require.NoError(t, err)
	twice, err := enc.Encrypt(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestDecryptPassesLegacyPlaintextThrough(t *testing.T) {
	enc, err := NewEncryptor(testKey(t))
	require.NoError(t, err)

	got, err := enc.Decrypt("legacy plaintext row")
	require.NoError(t, err)
	assert.Equal(t, "legacy plaintext row", got)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	enc1, err := NewEncryptor(testKey(t))
	require.NoError(t, err)
	enc2, err := NewEncryptor(testKey(t))
	require.NoError(t, err)

	token, err := enc1.Encrypt("secret")
	require.NoError(t, err)

	_, err = enc2.Decrypt(token)
	assert.Error(t, err)
}

func TestNewEncryptorRejectsEmptyKey(t *testing.T) {
	_, err := NewEncryptor("  ")
	assert.Error(t, err)
}

func TestNewEncryptorRejectsMalformedKey(t *testing.T) {
	_, err := NewEncryptor("too-short")
	assert.Error(t, err)
}
