// Package checksum computes content versions used as HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Notes returns the hex-encoded SHA-256 digest of notes as they would be
// written to the store, one newline-terminated line each.
func Notes(notes []string) string {
	h := sha256.New()
	for _, n := range notes {
		h.Write([]byte(n))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
