package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/anindta/task-management-project/internal/config"
)

// Hasher creates argon2id hashes and verifies argon2id or legacy bcrypt hashes.
type Hasher struct {
	params *argon2id.Params
}

// NewHasher returns a Hasher using cfg. Zero fields fall back to argon2id.DefaultParams.
func NewHasher(cfg config.Password) *Hasher {
	p := *argon2id.DefaultParams

	if cfg.Memory != 0 {
		p.Memory = cfg.Memory
	}

	if cfg.Iterations != 0 {
		p.Iterations = cfg.Iterations
	}

	if cfg.Parallelism != 0 {
		p.Parallelism = cfg.Parallelism
	}

	if cfg.SaltLength != 0 {
		p.SaltLength = cfg.SaltLength
	}

	if cfg.KeyLength != 0 {
		p.KeyLength = cfg.KeyLength
	}

	return &Hasher{params: &p}
}

// Hash returns the argon2id hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return hash, nil
}

// Verify compares password against hash in constant time.
// A mismatch is (false, nil), an unreadable hash is an error.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	if IsLegacyHash(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}

		if err != nil {
			return false, errors.Wrap(err, "failed to verify bcrypt hash")
		}

		return true, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, errors.Wrap(err, "failed to verify argon2id hash")
	}

	return match, nil
}

// IsLegacyHash reports whether hash is a bcrypt hash.
func IsLegacyHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
