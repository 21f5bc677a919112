package grpc

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const usernameKey ctxKey = "username"

// methods callable without an access token
var publicMethods = map[string]bool{
	FullMethod("Register"): true,
	FullMethod("Login"):    true,
	FullMethod("Refresh"):  true,
	FullMethod("Ping"):     true,
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// bearerFromMetadata reads "authorization: Bearer <token>".
func bearerFromMetadata(ctx context.Context) string {
	parts := strings.SplitN(firstMetadata(ctx, common.AuthorizationHeaderName), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	username, err := s.vault.Authenticate(ctx, bearerFromMetadata(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, usernameKey, username), req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.GRPCRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	if err != nil {
		s.logger.Debug(ctx, "gRPC call failed", "method", info.FullMethod, "code", code.String())
	}
	return resp, err
}

func usernameFrom(ctx context.Context) string {
	u, _ := ctx.Value(usernameKey).(string)
	return u
}

func peerAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}
