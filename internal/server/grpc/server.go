// Package grpc is the gRPC transport of the vault.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address string
	vault   services.Vault
	logger  logging.Logger
}

var _ VaultServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, vault services.Vault) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		vault:   vault,
	}
}

// NewServer builds a grpc.Server with the vault registered and the
// interceptors chained.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterVaultServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
