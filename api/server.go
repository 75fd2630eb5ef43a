package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-territory-server/service"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SessionEndpoint describes the UDP socket players continue on after
// joining a lobby over gRPC.
type SessionEndpoint interface {
	GetPublicKey() []byte
	GetAddr() string
}

type Server struct {
	registry i.LobbyRegistry
	router   i.Router
	endpoint SessionEndpoint
	logger   general_i.Logger
}

type ServerConfig struct {
	Registry i.LobbyRegistry
	Router   i.Router
	Endpoint SessionEndpoint
	Logger   general_i.Logger
}

func RegisterNewLobbyServer(gsr grpc.ServiceRegistrar, c *ServerConfig) error {
	if c.Registry == nil || c.Router == nil || c.Endpoint == nil || c.Logger == nil {
		return errors.New("lobby server requires a registry, router, endpoint and logger")
	}
	server := &Server{
		registry: c.Registry,
		router:   c.Router,
		endpoint: c.Endpoint,
		logger:   c.Logger,
	}

	RegisterLobbyServer(gsr, server)
	return nil
}

func (s *Server) CreateLobby(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	code, err := s.registry.CreateLobby(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"code": code, "slot": 1})
}

func (s *Server) JoinLobby(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	code := stringField(r, "code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}
	slot, err := s.registry.Join(code, playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"code": code, "slot": int(slot)})
}

func (s *Server) ListLobbies(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	infos := s.registry.List()
	lobbies := make([]any, 0, len(infos))
	for _, l := range infos {
		lobbies = append(lobbies, map[string]any{"code": l.Code, "player_count": l.PlayerCount})
	}
	return structpb.NewStruct(map[string]any{"lobbies": lobbies})
}

func (s *Server) LeaveLobby(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Leave(stringField(r, "code"), playerID); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *Server) Disconnect(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	s.router.Detach(playerID)
	s.registry.Disconnect(playerID)
	s.logger.Info(fmt.Sprintf("player disconnected: %s", playerID))
	return &structpb.Struct{}, nil
}

func (s *Server) SessionInfo(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	if !s.registry.HasPlayer(playerID) {
		return nil, status.Error(codes.FailedPrecondition, "player holds no lobby")
	}
	return structpb.NewStruct(map[string]any{
		"server_pub_key": base64.StdEncoding.EncodeToString(s.endpoint.GetPublicKey()),
		"server_addr":    s.endpoint.GetAddr(),
	})
}

func parsePlayerID(r *structpb.Struct) (string, error) {
	id, err := uuid.Parse(stringField(r, "player_id"))
	if err != nil {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("parsing player_id: %s", err))
	}
	return id.String(), nil
}

func stringField(r *structpb.Struct, name string) string {
	return r.GetFields()[name].GetStringValue()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrLobbyNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrLobbyFull),
		errors.Is(err, service.ErrAlreadyStarted),
		errors.Is(err, service.ErrNotInLobby),
		errors.Is(err, service.ErrUnknownPlayer):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrCapacityExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, service.ErrAlreadyInLobby):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
