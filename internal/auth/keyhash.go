package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// APIKeyPrefix marks raw API keys so they are recognizable in configs
// and log redaction rules.
const APIKeyPrefix = "rk_"

// HashAPIKey computes the lookup hash for a raw API key. Deterministic
// and one-way; the secret salts the hash so leaked table contents cannot
// be brute-forced against short keys.
func HashAPIKey(secret, rawKey string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateAPIKey creates a new raw API key from 32 bytes of entropy,
// base58-encoded with the standard prefix. The raw key is shown to the
// caller once; only its hash is stored.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return APIKeyPrefix + base58.Encode(buf), nil
}
