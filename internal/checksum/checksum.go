// Package checksum provides the content digests used for box metadata and mock embeddings.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the raw SHA-256 digest of data.
func Digest(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := Digest(data)
	return hex.EncodeToString(h[:])
}
