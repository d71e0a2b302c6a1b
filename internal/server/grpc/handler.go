package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
)

const transportName = "grpc"

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	username := req.GetFields()["username"].GetStringValue()
	password := req.GetFields()["password"].GetStringValue()

	tokens, err := s.auth.Login(ctx, username, password)

	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.metrics.ObserveLogin(transportName, metrics.ResultFailure)
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		s.metrics.ObserveLogin(transportName, metrics.ResultError)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status.FromContextError(ctxErr).Err()
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.metrics.ObserveLogin(transportName, metrics.ResultSuccess)

	resp, err := structpb.NewStruct(map[string]any{
		"access_token": tokens.AccessToken,
		"token_type":   tokens.TokenType,
		"expires_at":   tokens.ExpiresAt.UTC().Format(time.RFC3339),
		"expires_in":   time.Until(tokens.ExpiresAt).Round(time.Second).Seconds(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil

}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"username":     identity.Username,
		"display_name": identity.DisplayName,
		"email":        identity.Email,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil

}
