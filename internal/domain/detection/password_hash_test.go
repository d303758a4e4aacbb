package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the tests fast
var testHashParams = HashParams{Time: 1, MemoryKiB: 64, Threads: 1}

func TestPasswordHasher_Hash(t *testing.T) {
	hasher, err := NewPasswordHasher("install-salt", testHashParams)
	require.NoError(t, err)

	first := hasher.Hash("CorrectHorse1!")
	assert.Len(t, string(first), 64)
	assert.Equal(t, first, hasher.Hash("CorrectHorse1!"), "digest must be deterministic")
	assert.NotEqual(t, first, hasher.Hash("CorrectHorse2!"))
	assert.NotContains(t, string(first), "CorrectHorse1!")

	other, err := NewPasswordHasher("another-salt", testHashParams)
	require.NoError(t, err)
	assert.NotEqual(t, first, other.Hash("CorrectHorse1!"), "salt must change the digest")
}

func TestNewPasswordHasher_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		salt   string
		params HashParams
	}{
		{"Empty salt", "", testHashParams},
		{"Zero time", "salt", HashParams{Time: 0, MemoryKiB: 64, Threads: 1}},
		{"Zero threads", "salt", HashParams{Time: 1, MemoryKiB: 64, Threads: 0}},
		{"Memory below minimum", "salt", HashParams{Time: 1, MemoryKiB: 15, Threads: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher, err := NewPasswordHasher(tt.salt, tt.params)
			assert.Error(t, err)
			assert.Nil(t, hasher)
		})
	}
}

func TestDefaultHashParams(t *testing.T) {
	params := DefaultHashParams()
	_, err := NewPasswordHasher("salt", params)
	assert.NoError(t, err)
}
