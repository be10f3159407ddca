package util

import (
	"encoding/hex"
	"strings"
)

// IsLikelyHex reports whether s decodes cleanly as hex, ignoring spaces.
func IsLikelyHex(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
