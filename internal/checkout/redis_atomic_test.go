package checkout

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func sha1hex(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Steady-state hold operations run through EVALSHA, so the registered
// scripts must be keyed by the SHA-1 of their source, not the source
// itself.
func TestHoldScriptsKeyedBySHA(t *testing.T) {
	tests := []struct {
		name   string
		hash   string
		source string
	}{
		{"acquire", holdScript.Hash(), luaAtomicTicketHold},
		{"release", releaseScript.Hash(), luaAtomicTicketRelease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.hash != sha1hex(tt.source) {
				t.Errorf("script hash = %q, want SHA-1 of source %q", tt.hash, sha1hex(tt.source))
			}
		})
	}

	if holdScript.Hash() == releaseScript.Hash() {
		t.Error("acquire and release scripts share a hash")
	}
}
