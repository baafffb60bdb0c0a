package persistence

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes the stable content hash used as the idempotency key
// for a piece of text. Input is canonicalized (trimmed, whitespace collapsed)
// so cosmetic differences do not defeat deduplication.
func Fingerprint(text string) string {
	canonical := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
