// Package integrity verifies off-chain content against on-chain hash
// commitments.
//
// Commitments are SHA3-256 digests over the UTF-8 bytes of the content.
package integrity

import (
	"crypto/sha3"
	"encoding/hex"
	"strings"
)

// DigestSize is the length in bytes of a notes hash commitment.
const DigestSize = 32

// Digest returns the SHA3-256 digest of summary.
func Digest(summary string) [DigestSize]byte {
	return sha3.Sum256([]byte(summary))
}

// DigestHex returns the lowercase hex SHA3-256 digest of summary.
func DigestHex(summary string) string {
	d := Digest(summary)
	return hex.EncodeToString(d[:])
}

// Verify reports whether summary hashes to expectedHex. The comparison is
// case-insensitive on the hex encoding.
func Verify(summary, expectedHex string) bool {
	return strings.EqualFold(DigestHex(summary), expectedHex)
}
