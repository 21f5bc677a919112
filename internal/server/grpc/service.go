package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "credvault.v1.VaultService"

// VaultServiceServer is the server API of the vault service. Requests and
// responses are google.protobuf.Struct messages keyed by the JSON field
// names of the HTTP transport.
type VaultServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListServices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAuditLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(VaultServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// FullMethod returns "/credvault.v1.VaultService/<name>".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary(name string, fn unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(VaultServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes VaultService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", VaultServiceServer.Register),
		unary("Login", VaultServiceServer.Login),
		unary("Refresh", VaultServiceServer.Refresh),
		unary("Logout", VaultServiceServer.Logout),
		unary("SaveCredential", VaultServiceServer.SaveCredential),
		unary("UpdateCredential", VaultServiceServer.UpdateCredential),
		unary("VerifyCredential", VaultServiceServer.VerifyCredential),
		unary("ListServices", VaultServiceServer.ListServices),
		unary("DeleteCredential", VaultServiceServer.DeleteCredential),
		unary("GetAuditLog", VaultServiceServer.GetAuditLog),
		unary("Ping", VaultServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credvault/v1/vault.proto",
}

// RegisterVaultServiceServer registers srv on s.
func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls VaultService methods over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with the given request fields.
func (c *Client) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
