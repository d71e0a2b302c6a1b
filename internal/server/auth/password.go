package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/sentinel/internal/common"
)

// MaxPasswordBytes is bcrypt's input limit. Passwords are cut to this many
// bytes before hashing and before comparison, so two passwords that share
// their first 72 bytes are treated as the same password. Stored hashes were
// produced under this rule; changing it would lock those accounts out.
const MaxPasswordBytes = 72

// ErrInvalidHash is returned when a stored hash cannot be parsed by bcrypt.
var ErrInvalidHash = errors.New("invalid password hash")

// truncatePassword returns a fresh copy of at most MaxPasswordBytes bytes
// of password. The caller owns the slice and should wipe it.
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword returns a bcrypt hash of the (truncated) password.
func HashPassword(password string, cost int) ([]byte, error) {
	pw := truncatePassword(password)
	defer common.WipeByteArray(pw)

	hash, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword compares password with a stored bcrypt hash.
// Returns (true, nil) on a match, (false, nil) on a mismatch and
// (false, ErrInvalidHash) when the stored hash is unusable.
func VerifyPassword(hash []byte, password string) (bool, error) {
	pw := truncatePassword(password)
	defer common.WipeByteArray(pw)

	err := bcrypt.CompareHashAndPassword(hash, pw)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

// NewDummyHash hashes random bytes at the given cost. Comparing against it
// costs the same as comparing against a real record and never matches.
func NewDummyHash(cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword(common.GenerateRandByteArray(32), cost)
}

// HashCost reports the cost a bcrypt hash was produced with.
func HashCost(hash []byte) (int, error) {
	cost, err := bcrypt.Cost(hash)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return cost, nil
}
