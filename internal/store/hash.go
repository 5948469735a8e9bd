package store

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// hashContentPrefix bounds how much content participates in the fingerprint.
// Court documents are append-only in practice; a changed prefix means a
// changed document, and hashing the full text of large transcripts buys
// nothing.
const hashContentPrefix = 1000

// HashRecord computes the deterministic content hash of
// (id, natural key, content prefix) used to detect unchanged documents.
// Reprocessing unchanged input therefore skips the write entirely.
func HashRecord(id int64, naturalKey, content string) string {
	if len(content) > hashContentPrefix {
		content = content[:hashContentPrefix]
	}
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(id, 10)))
	h.Write([]byte{0}) // separator
	h.Write([]byte(naturalKey))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}
