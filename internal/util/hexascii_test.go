package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLikelyHex(t *testing.T) {
	assert.True(t, IsLikelyHex("deadbeef"))
	assert.True(t, IsLikelyHex("DE AD BE EF"))
	assert.False(t, IsLikelyHex(""))
	assert.False(t, IsLikelyHex("abc"))
	assert.False(t, IsLikelyHex("not hex at all"))
}
