package vault

import (
	"context"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	enc, err := sigcrypto.NewEncryptor(k.Encode())
	require.NoError(t, err)
	return New(nil, enc, zap.NewNop().Sugar())
}

func TestSaveRejectsEmptyName(t *testing.T) {
	v := newTestVault(t)
	_, err := v.Save(context.Background(), "user-1", "   ", "image-data", false)
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSaveRejectsEmptyData(t *testing.T) {
	v := newTestVault(t)
	_, err := v.Save(context.Background(), "user-1", "Ma signature", "", false)
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}
