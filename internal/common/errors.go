// Package common defines shared constants and sentinel errors used across
// the sentinel server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. ErrorUnauthorized is the single outward kind for
	// every credential check failure: unknown user, wrong password, disabled
	// account, unreadable stored hash.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrInvalidToken is the parent of every token verification failure.
	ErrInvalidToken = errors.New("invalid token")

	// Token failure kinds. Each one also matches ErrInvalidToken.
	ErrTokenMalformed      = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenExpired        = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenSubjectInvalid = fmt.Errorf("%w: unknown or disabled subject", ErrInvalidToken)
)

// TokenFailureKind returns a short label for a token verification error,
// suitable for logs and metric labels. Unknown errors map to "internal".
func TokenFailureKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSubjectInvalid):
		return "subject_invalid"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "internal"
	}
}
