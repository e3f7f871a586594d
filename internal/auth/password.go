package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const saltBytes = 32

func generateSalt() (string, error) {
	randomBytes := make([]byte, saltBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

func digest(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// HashPassword returns "salt:digest" where digest is the hex sha256 of
// password followed by a fresh random hex salt.
func HashPassword(password string) (string, error) {
	salt, err := generateSalt()
	if err != nil {
		return "", err
	}
	return salt + ":" + digest(password, salt), nil
}

// VerifyPassword reports whether password matches a value produced by
// HashPassword. Values without a salt separator never match.
func VerifyPassword(password, stored string) bool {
	salt, hash, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || strings.Contains(hash, ":") {
		return false
	}
	return digest(password, salt) == hash
}
