package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashPassword digests a plaintext secret for storage: SHA-256 over the
// UTF-8 bytes, base64-encoded. Deterministic, no per-user salt, so equal
// secrets produce equal digests. Kept compatible with the existing rows.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// CheckPasswordHash reports whether the candidate hashes to the stored digest.
func CheckPasswordHash(password, digest string) bool {
	return HashPassword(password) == digest
}
