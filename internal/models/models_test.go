package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingSignatures(t *testing.T) {
	s := &Subscription{CustomMaxSignatures: 5, SignaturesUsed: 2}
	assert.Equal(t, 3, s.RemainingSignatures())

	s.SignaturesUsed = 7
	assert.Equal(t, 0, s.RemainingSignatures())

	s.CustomMaxSignatures = 0
	assert.Equal(t, -1, s.RemainingSignatures())
	assert.True(t, s.HasUnlimitedSignatures())
}

func TestSubscriptionIsCurrent(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Subscription{Status: SubscriptionActive, CurrentPeriodEnd: &future}).IsCurrent(now))
	assert.True(t, (&Subscription{Status: SubscriptionTrialing}).IsCurrent(now))
	assert.False(t, (&Subscription{Status: SubscriptionActive, CurrentPeriodEnd: &past}).IsCurrent(now))
	assert.False(t, (&Subscription{Status: SubscriptionCanceled, CurrentPeriodEnd: &future}).IsCurrent(now))
}

func TestDocumentSignerIsExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&DocumentSigner{InvitationExpiresAt: now.Add(time.Hour)}).IsExpired(now))
	assert.True(t, (&DocumentSigner{InvitationExpiresAt: now.Add(-time.Hour)}).IsExpired(now))
	assert.False(t, (&DocumentSigner{}).IsExpired(now))
}

func TestCertificateIsExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Certificate{ValidUntil: now.Add(time.Hour)}).IsExpired(now))
	assert.True(t, (&Certificate{ValidUntil: now.Add(-time.Hour)}).IsExpired(now))
}

func TestJSONBValue(t *testing.T) {
	v, err := JSONB(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	v, err = JSONB(`{"a":1}`).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)
}

func TestJSONBScan(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan(nil))
	assert.Equal(t, JSONB("{}"), j)

	require.NoError(t, j.Scan([]byte(`{"k":"v"}`)))
	assert.Equal(t, JSONB(`{"k":"v"}`), j)

	require.NoError(t, j.Scan(`{"s":true}`))
	assert.Equal(t, JSONB(`{"s":true}`), j)
}

func TestMeta(t *testing.T) {
	m := Meta(map[string]any{"action": "signed"})
	assert.JSONEq(t, `{"action":"signed"}`, string(m))
}
