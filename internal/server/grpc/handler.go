package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultAuditLimit = 50

func field(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func meta(ctx context.Context) services.RequestMeta {
	return services.RequestMeta{
		SourceAddress: peerAddress(ctx),
		ClientAgent:   firstMetadata(ctx, "user-agent"),
	}
}

func reply(fields map[string]any) (*structpb.Struct, error) {
	fields["status"] = "success"
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func tokenReply(p *auth.TokenPair) (*structpb.Struct, error) {
	return reply(map[string]any{
		"access_token":       p.AccessToken,
		"refresh_token":      p.RefreshToken,
		"token_type":         common.BearerScheme,
		"expires_at":         p.AccessExpiresAt.UTC().Format(time.RFC3339),
		"refresh_expires_at": p.RefreshExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.vault.Register(ctx, meta(ctx), field(req, "username"), field(req, "password")); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"message": "account created"})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pair, err := s.vault.Login(ctx, meta(ctx), field(req, "username"), field(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenReply(pair)
}

func (s *GRPCServer) Refresh(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pair, err := s.vault.Refresh(ctx, meta(ctx), field(req, "refresh_token"))
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenReply(pair)
}

func (s *GRPCServer) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.vault.Logout(ctx, meta(ctx), usernameFrom(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"message": "logged out"})
}

func (s *GRPCServer) SaveCredential(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	service := field(req, "service")
	result, err := s.vault.SaveCredential(ctx, meta(ctx), usernameFrom(ctx), service, field(req, "secret"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"service": services.ServiceName(service), "result": result.String()})
}

func (s *GRPCServer) UpdateCredential(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.vault.UpdateCredential(ctx, meta(ctx), usernameFrom(ctx), field(req, "service"), field(req, "secret")); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"message": "credential updated"})
}

func (s *GRPCServer) VerifyCredential(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ok, err := s.vault.VerifyCredential(ctx, meta(ctx), usernameFrom(ctx), field(req, "service"), field(req, "secret"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"valid": ok})
}

func (s *GRPCServer) ListServices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.vault.ListServices(ctx, usernameFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	names := make([]any, 0, len(list))
	for _, name := range list {
		names = append(names, name)
	}
	return reply(map[string]any{"services": names})
}

func (s *GRPCServer) DeleteCredential(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.vault.DeleteCredential(ctx, meta(ctx), usernameFrom(ctx), field(req, "service")); err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"message": "credential deleted"})
}

func (s *GRPCServer) GetAuditLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := defaultAuditLimit
	if v, ok := req.GetFields()["limit"]; ok {
		limit = int(v.GetNumberValue())
	}

	entries, err := s.vault.GetAuditLog(ctx, usernameFrom(ctx), limit)
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryFields(e))
	}
	return reply(map[string]any{"entries": out})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(map[string]any{"message": "OK"})
}

func entryFields(e *models.AuditEntry) map[string]any {
	return map[string]any{
		"id":             e.ID,
		"username":       e.Username,
		"action_type":    string(e.Action),
		"status":         string(e.Status),
		"details":        e.Details,
		"source_address": e.SourceAddress,
		"client_agent":   e.ClientAgent,
		"created_at":     e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
