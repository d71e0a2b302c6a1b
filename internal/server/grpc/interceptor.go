package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// protectedMethods require a valid access token.
var protectedMethods = map[string]bool{
	WhoAmIMethod: true,
}

// IdentityFromContext returns the Identity the interceptor attached.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*models.Identity)
	return id, ok && id != nil
}

// tokenFromMetadata prefers "authorization: Bearer <token>" and falls back to
// the bare access_token key.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
		scheme, token, found := strings.Cut(values[0], " ")
		if found && strings.EqualFold(scheme, common.TokenType) {
			return strings.TrimSpace(token)
		}
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protectedMethods[info.FullMethod] {

		accessToken := tokenFromMetadata(ctx)
		if len(accessToken) == 0 {
			s.metrics.ObserveAuthorization(transportName, metrics.ResultFailure)
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		identity, err := s.auth.Authorize(ctx, accessToken)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				s.metrics.ObserveAuthorization(transportName, metrics.ResultFailure)
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
			s.metrics.ObserveAuthorization(transportName, metrics.ResultError)
			s.logger.Error(ctx, "authorization failed", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}

		s.metrics.ObserveAuthorization(transportName, metrics.ResultSuccess)
		ctx = context.WithValue(ctx, identityKey, identity)

	}

	return handler(ctx, req)
}
