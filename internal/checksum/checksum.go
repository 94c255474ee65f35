// Package checksum fingerprints note file content so the index can skip
// files that have not changed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex SHA-256 digest of data. Equal digests mean the file
// content is unchanged and its index rows are still valid.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
