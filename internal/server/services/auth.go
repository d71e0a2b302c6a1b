// Package services contains server-side business logic. AuthService checks
// passwords against the credential store, issues access tokens and resolves
// presented tokens back to an Identity.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/logging"
	"github.com/dmitrijs2005/sentinel/internal/server/auth"
	"github.com/dmitrijs2005/sentinel/internal/server/config"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
)

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthService is safe for concurrent use: the repository, issuer and dummy
// hash are read-only after construction and the semaphore only bounds how
// many bcrypt comparisons run at once.
type AuthService struct {
	repo      credentials.Repository
	issuer    *auth.TokenIssuer
	dummyHash []byte
	hashers   *semaphore.Weighted
	logger    logging.Logger
}

// NewAuthService builds the service from config. It computes one bcrypt
// hash at cfg.BcryptCost up front, used for lookups that find no record.
func NewAuthService(repo credentials.Repository, cfg *config.Config, logger logging.Logger, opts ...auth.IssuerOption) (*AuthService, error) {
	dummy, err := auth.NewDummyHash(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &AuthService{
		repo:      repo,
		issuer:    auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, opts...),
		dummyHash: dummy,
		hashers:   semaphore.NewWeighted(int64(cfg.MaxConcurrentHashes)),
		logger:    logger.With("module", "auth_service"),
	}, nil
}

// Authenticate checks username and password and returns the stored
// Identity on success.
//
// Every credential failure returns common.ErrorUnauthorized. A bcrypt
// comparison runs on every path, against a dummy hash when the user does
// not exist, so unknown users cost the same as wrong passwords. Store
// outages return common.ErrorInternal; a cancelled ctx returns ctx.Err().
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	rec, err := s.repo.Lookup(ctx, username)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	hash := s.dummyHash
	if rec != nil {
		hash = rec.PasswordHash
	}

	if err := s.hashers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	match, verifyErr := auth.VerifyPassword(hash, password)
	s.hashers.Release(1)

	var reason string
	switch {
	case rec == nil:
		reason = "unknown_user"
	case verifyErr != nil:
		reason = "malformed_hash"
	case rec.Disabled:
		reason = "disabled"
	case !match:
		reason = "password_mismatch"
	}

	if reason != "" {
		s.logger.Info(ctx, "authentication failed", "username", username, "reason", reason)
		return nil, common.ErrorUnauthorized
	}

	return rec.Identity(), nil
}

// Login authenticates and issues a bearer access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(identity.Username)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "username", identity.Username)
	return &TokenPair{AccessToken: token, TokenType: common.TokenType, ExpiresAt: expiresAt}, nil
}

// Authorize verifies a presented access token and returns the subject's
// current Identity.
//
// Failures wrap common.ErrInvalidToken and are one of
// common.ErrTokenMalformed (bad format or signature), common.ErrTokenExpired
// or common.ErrTokenSubjectInvalid (subject no longer exists or is
// disabled). Store outages return common.ErrorInternal.
func (s *AuthService) Authorize(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		s.logger.Info(ctx, "token rejected", "reason", common.TokenFailureKind(err))
		return nil, err
	}

	rec, err := s.repo.Lookup(ctx, claims.Subject)
	switch {
	case errors.Is(err, common.ErrorNotFound), err == nil && rec.Disabled:
		s.logger.Info(ctx, "token rejected", "reason", common.TokenFailureKind(common.ErrTokenSubjectInvalid), "subject", claims.Subject)
		return nil, common.ErrTokenSubjectInvalid
	case err != nil:
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	return rec.Identity(), nil
}

// TokenTTL reports the access token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.issuer.TTL()
}
