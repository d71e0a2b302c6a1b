// Package common contains shared constants and sentinel errors used across
// sentinel components.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key that may carry a raw
	// access token.
	AccessTokenHeaderName = "access_token"

	// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and
	// in gRPC metadata.
	AuthorizationHeaderName = "authorization"

	// TokenType is reported to clients alongside every issued access token.
	TokenType = "bearer"

	// RequestIDHeaderName is echoed on every HTTP response.
	RequestIDHeaderName = "X-Request-ID"
)
