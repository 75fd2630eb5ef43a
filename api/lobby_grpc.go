package api

import (
	"context"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const lobbyServiceName = "territory.Lobby"

// LobbyServer is the server API for the territory.Lobby service. Requests
// and responses are protobuf Structs keyed by snake_case field names.
type LobbyServer interface {
	CreateLobby(context.Context, *structpb.Struct) (*structpb.Struct, error)
	JoinLobby(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLobbies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LeaveLobby(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SessionInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type lobbyMethod func(LobbyServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var lobbyServiceDesc = grpc.ServiceDesc{
	ServiceName: lobbyServiceName,
	HandlerType: (*LobbyServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateLobby", Handler: unaryHandler("CreateLobby", LobbyServer.CreateLobby)},
		{MethodName: "JoinLobby", Handler: unaryHandler("JoinLobby", LobbyServer.JoinLobby)},
		{MethodName: "ListLobbies", Handler: unaryHandler("ListLobbies", LobbyServer.ListLobbies)},
		{MethodName: "LeaveLobby", Handler: unaryHandler("LeaveLobby", LobbyServer.LeaveLobby)},
		{MethodName: "Disconnect", Handler: unaryHandler("Disconnect", LobbyServer.Disconnect)},
		{MethodName: "SessionInfo", Handler: unaryHandler("SessionInfo", LobbyServer.SessionInfo)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "territory/lobby.proto",
}

func RegisterLobbyServer(s grpc.ServiceRegistrar, srv LobbyServer) {
	s.RegisterService(&lobbyServiceDesc, srv)
}

func unaryHandler(name string, call lobbyMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LobbyServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + lobbyServiceName + "/" + name,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LobbyServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LobbyClient is the client API for the territory.Lobby service.
type LobbyClient struct {
	cc grpc.ClientConnInterface
}

func NewLobbyClient(cc grpc.ClientConnInterface) *LobbyClient {
	return &LobbyClient{cc: cc}
}

func (c *LobbyClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+lobbyServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LobbyClient) CreateLobby(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateLobby", in, opts...)
}

func (c *LobbyClient) JoinLobby(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "JoinLobby", in, opts...)
}

func (c *LobbyClient) ListLobbies(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListLobbies", in, opts...)
}

func (c *LobbyClient) LeaveLobby(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "LeaveLobby", in, opts...)
}

func (c *LobbyClient) Disconnect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Disconnect", in, opts...)
}

func (c *LobbyClient) SessionInfo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SessionInfo", in, opts...)
}
