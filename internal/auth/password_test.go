package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	stored, err := HashPassword("pw1")
	require.NoError(t, err)

	salt, hash, ok := strings.Cut(stored, ":")
	require.True(t, ok, "expected salt:digest, got %q", stored)
	assert.Len(t, salt, 64)
	assert.Len(t, hash, 64)
	assert.Equal(t, digest("pw1", salt), hash)

	t.Run("salts differ between calls", func(t *testing.T) {
		other, err := HashPassword("pw1")
		require.NoError(t, err)
		assert.NotEqual(t, stored, other)
	})
}

func TestVerifyPassword(t *testing.T) {
	stored, err := HashPassword("correct horse")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
		stored   string
		expected bool
	}{
		{"matching password", "correct horse", stored, true},
		{"wrong password", "battery staple", stored, false},
		{"empty password", "", stored, false},
		{"no separator", "correct horse", digest("correct horse", ""), false},
		{"empty salt", "correct horse", ":" + digest("correct horse", ""), false},
		{"too many separators", "correct horse", stored + ":extra", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, VerifyPassword(tc.password, tc.stored))
		})
	}
}
