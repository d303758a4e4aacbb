package detection

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"

	"github.com/stoik/phishcatch/internal/domain"
)

// HashParams are the Argon2id cost parameters for password digests
type HashParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultHashParams follows the OWASP minimum for Argon2id (19 MiB, 2 passes, 1 lane)
func DefaultHashParams() HashParams {
	return HashParams{
		Time:      2,
		MemoryKiB: 19 * 1024,
		Threads:   1,
	}
}

const passwordHashKeyLen = 32

// PasswordHasher derives the content address of a password.
//
// The salt is installation-wide rather than per record: the store is keyed by digest,
// and a lookup must re-derive the same key from a candidate password.
type PasswordHasher struct {
	salt   []byte
	params HashParams
}

// NewPasswordHasher creates a hasher. An empty salt is rejected.
func NewPasswordHasher(salt string, params HashParams) (*PasswordHasher, error) {
	if salt == "" {
		return nil, errors.New("password hash salt must not be empty")
	}
	if params.Time == 0 || params.Threads == 0 {
		return nil, errors.New("password hash time and threads must be positive")
	}
	if params.MemoryKiB < 8*uint32(params.Threads) {
		return nil, errors.New("password hash memory must be at least 8 KiB per thread")
	}

	return &PasswordHasher{
		salt:   []byte(salt),
		params: params,
	}, nil
}

// Hash returns the hex digest of password
func (h *PasswordHasher) Hash(password string) domain.ContentHash {
	key := argon2.IDKey([]byte(password), h.salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, passwordHashKeyLen)
	return domain.ContentHash(hex.EncodeToString(key))
}
