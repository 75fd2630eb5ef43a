package api

import (
	"errors"
	"fmt"
	"sync"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	socket_i "github.com/beka-birhanu/vinom-common/interfaces/socket"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoLobby      = errors.New("player does not hold a lobby")
)

type sendFunc func(clientIDs []uuid.UUID, recordType byte, payload []byte)

// UDPTransport carries inputs and events over the encrypted UDP socket.
// Players authenticate with the raw bytes of their UUID.
type UDPTransport struct {
	registry i.LobbyRegistry
	router   i.Router
	send     sendFunc
	logger   general_i.Logger
	attached map[string]struct{}
	sync.Mutex
}

type UDPConfig struct {
	Socket   socket_i.ServerSocketManager
	Registry i.LobbyRegistry
	Router   i.Router
	Logger   general_i.Logger
}

func NewUDPTransport(c *UDPConfig) *UDPTransport {
	t := newUDPTransport(c.Registry, c.Router, c.Logger, func(clientIDs []uuid.UUID, recordType byte, payload []byte) {
		c.Socket.BroadcastToClients(clientIDs, recordType, payload)
	})

	c.Socket.SetClientRequestHandler(t.handleRequest)
	c.Socket.SetClientAuthenticator(t)
	return t
}

func newUDPTransport(registry i.LobbyRegistry, router i.Router, logger general_i.Logger, send sendFunc) *UDPTransport {
	t := &UDPTransport{
		registry: registry,
		router:   router,
		logger:   logger,
		send:     send,
		attached: make(map[string]struct{}),
	}
	registry.SetReleaseHandler(t.release)
	return t
}

// Authenticate accepts players that currently hold a lobby and routes their
// events to the socket.
func (t *UDPTransport) Authenticate(token []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if !t.registry.HasPlayer(id.String()) {
		return uuid.Nil, ErrNoLobby
	}

	t.Lock()
	t.attached[id.String()] = struct{}{}
	t.router.Attach(id.String(), &udpSink{id: id, send: t.send})
	t.Unlock()
	t.logger.Info(fmt.Sprintf("authenticated player: %s", id))
	return id, nil
}

// release detaches the socket mailbox of a player that no longer holds a
// lobby. Players attached by other transports are left alone.
func (t *UDPTransport) release(playerID string) {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.attached[playerID]; !ok {
		return
	}
	delete(t.attached, playerID)
	t.router.Detach(playerID)
	t.logger.Info(fmt.Sprintf("released player: %s", playerID))
}

func (t *UDPTransport) handleRequest(playerID uuid.UUID, recordType byte, payload []byte) {
	if recordType != protocol.InputRecordType {
		t.logger.Warning(fmt.Sprintf("unknown record type %d from player: %s", recordType, playerID))
		return
	}
	in, err := protocol.DecodeInputRecord(payload)
	if err != nil {
		t.logger.Warning(fmt.Sprintf("malformed input from player %s: %s", playerID, err))
		return
	}
	if err := t.registry.Input(playerID.String(), in); err != nil {
		t.logger.Warning(fmt.Sprintf("dropped input from player %s: %s", playerID, err))
	}
}

type udpSink struct {
	id   uuid.UUID
	send sendFunc
}

func (s *udpSink) Send(ev protocol.Event) error {
	recordType, body, err := protocol.EncodeRecord(ev)
	if err != nil {
		return err
	}
	s.send([]uuid.UUID{s.id}, recordType, body)
	return nil
}
