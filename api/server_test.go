package api

import (
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeEndpoint struct{}

func (fakeEndpoint) GetPublicKey() []byte { return []byte("public-key") }
func (fakeEndpoint) GetAddr() string      { return "127.0.0.1:9000" }

func newLobbyClient(t *testing.T, maxLobbies int) *LobbyClient {
	t.Helper()
	outbox := newOutbox(t)
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	err := RegisterNewLobbyServer(s, &ServerConfig{
		Registry: newRegistry(t, outbox, maxLobbies),
		Router:   outbox,
		Endpoint: fakeEndpoint{},
		Logger:   nopLogger{},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewLobbyClient(conn)
}

func req(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return s
}

func callCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func wantCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Fatalf("code = %s (%v), want %s", got, err, want)
	}
}

func TestLobbyServerCreateAndJoin(t *testing.T) {
	client := newLobbyClient(t, 10)
	ctx := callCtx(t)
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()

	created, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": a}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	code := created.GetFields()["code"].GetStringValue()
	if len(code) != 6 {
		t.Fatalf("unexpected code %q", code)
	}

	list, err := client.ListLobbies(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lobbies := list.GetFields()["lobbies"].GetListValue().GetValues()
	if len(lobbies) != 1 {
		t.Fatalf("listed %d lobbies, want 1", len(lobbies))
	}
	entry := lobbies[0].GetStructValue().GetFields()
	if entry["code"].GetStringValue() != code || entry["player_count"].GetNumberValue() != 1 {
		t.Fatalf("unexpected entry: %v", entry)
	}

	joined, err := client.JoinLobby(ctx, req(t, map[string]any{"player_id": b, "code": code}))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if slot := joined.GetFields()["slot"].GetNumberValue(); slot != 2 {
		t.Fatalf("slot = %v, want 2", slot)
	}

	_, err = client.JoinLobby(ctx, req(t, map[string]any{"player_id": c, "code": code}))
	wantCode(t, err, codes.FailedPrecondition)

	_, err = client.CreateLobby(ctx, req(t, map[string]any{"player_id": a}))
	wantCode(t, err, codes.AlreadyExists)

	list, err = client.ListLobbies(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := len(list.GetFields()["lobbies"].GetListValue().GetValues()); n != 0 {
		t.Fatalf("started lobby listed")
	}
}

func TestLobbyServerErrors(t *testing.T) {
	client := newLobbyClient(t, 1)
	ctx := callCtx(t)

	_, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": "not-a-uuid"}))
	wantCode(t, err, codes.InvalidArgument)

	_, err = client.JoinLobby(ctx, req(t, map[string]any{"player_id": uuid.NewString()}))
	wantCode(t, err, codes.InvalidArgument)

	_, err = client.JoinLobby(ctx, req(t, map[string]any{"player_id": uuid.NewString(), "code": "ZZZZZZ"}))
	wantCode(t, err, codes.NotFound)

	if _, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": uuid.NewString()})); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = client.CreateLobby(ctx, req(t, map[string]any{"player_id": uuid.NewString()}))
	wantCode(t, err, codes.ResourceExhausted)

	_, err = client.LeaveLobby(ctx, req(t, map[string]any{"player_id": uuid.NewString()}))
	wantCode(t, err, codes.FailedPrecondition)
}

func TestLobbyServerSessionInfo(t *testing.T) {
	client := newLobbyClient(t, 10)
	ctx := callCtx(t)
	a := uuid.NewString()

	_, err := client.SessionInfo(ctx, req(t, map[string]any{"player_id": a}))
	wantCode(t, err, codes.FailedPrecondition)

	if _, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": a})); err != nil {
		t.Fatalf("create: %v", err)
	}
	info, err := client.SessionInfo(ctx, req(t, map[string]any{"player_id": a}))
	if err != nil {
		t.Fatalf("session info: %v", err)
	}
	key, err := base64.StdEncoding.DecodeString(info.GetFields()["server_pub_key"].GetStringValue())
	if err != nil || string(key) != "public-key" {
		t.Fatalf("unexpected key %q: %v", key, err)
	}
	if addr := info.GetFields()["server_addr"].GetStringValue(); addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", addr)
	}
}

func TestLobbyServerLeaveAndDisconnect(t *testing.T) {
	client := newLobbyClient(t, 10)
	ctx := callCtx(t)
	a, b := uuid.NewString(), uuid.NewString()

	created, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": a}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	code := created.GetFields()["code"].GetStringValue()

	if _, err := client.LeaveLobby(ctx, req(t, map[string]any{"player_id": a, "code": code})); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, err = client.JoinLobby(ctx, req(t, map[string]any{"player_id": b, "code": code}))
	wantCode(t, err, codes.NotFound)

	if _, err := client.CreateLobby(ctx, req(t, map[string]any{"player_id": b})); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.Disconnect(ctx, req(t, map[string]any{"player_id": b})); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	_, err = client.SessionInfo(ctx, req(t, map[string]any{"player_id": b}))
	wantCode(t, err, codes.FailedPrecondition)
}
