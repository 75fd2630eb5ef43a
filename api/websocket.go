package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 1 << 16
	wsPongWait     = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 10 * time.Second
)

// WSHandler serves the JSON envelope protocol over WebSocket. Each
// connection is one player.
type WSHandler struct {
	registry i.LobbyRegistry
	router   i.Router
	logger   general_i.Logger
	upgrader websocket.Upgrader
}

type WSConfig struct {
	Registry i.LobbyRegistry
	Router   i.Router
	Logger   general_i.Logger
}

func NewWSHandler(c *WSConfig) *WSHandler {
	return &WSHandler{
		registry: c.Registry,
		router:   c.Router,
		logger:   c.Logger,
		upgrader: websocket.Upgrader{
			// Clients are served from other origins in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("upgrading connection: %s", err))
		return
	}
	defer conn.Close()

	playerID := uuid.NewString()
	sink := &wsSink{conn: conn}
	h.router.Attach(playerID, sink)
	h.router.Deliver(playerID, protocol.Connected{PlayerID: playerID})
	h.logger.Info(fmt.Sprintf("player connected: %s", playerID))

	defer func() {
		h.router.Detach(playerID)
		h.registry.Disconnect(playerID)
		h.logger.Info(fmt.Sprintf("player disconnected: %s", playerID))
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go sink.pingLoop(done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warning(fmt.Sprintf("reading from player %s: %s", playerID, err))
			}
			return
		}
		h.dispatch(playerID, msg)
	}
}

// dispatch routes one inbound frame. Malformed frames are logged and dropped.
func (h *WSHandler) dispatch(playerID string, msg []byte) {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("malformed frame from player %s: %s", playerID, err))
		return
	}

	switch env.Type {
	case protocol.ActionCreateLobby:
		_, _ = h.registry.CreateLobby(playerID)
	case protocol.ActionJoinLobby:
		req, err := protocol.DecodePayload[protocol.JoinLobby](env)
		if err != nil {
			h.logger.Warning(fmt.Sprintf("malformed joinLobby from player %s: %s", playerID, err))
			return
		}
		_, _ = h.registry.Join(req.Code, playerID)
	case protocol.ActionListLobbies:
		h.router.Deliver(playerID, protocol.LobbyList{Lobbies: h.registry.List()})
	case protocol.ActionInput:
		in, err := protocol.DecodePayload[game.Input](env)
		if err != nil {
			h.logger.Warning(fmt.Sprintf("malformed input from player %s: %s", playerID, err))
			return
		}
		if err := h.registry.Input(playerID, in); err != nil {
			h.logger.Warning(fmt.Sprintf("dropped input from player %s: %s", playerID, err))
		}
	case protocol.ActionLeaveLobby:
		_ = h.registry.Leave("", playerID)
	default:
		h.logger.Warning(fmt.Sprintf("unknown frame type %q from player %s", env.Type, playerID))
	}
}

var errConnClosed = errors.New("connection closed")

// wsSink serializes writes to one connection. gorilla allows a single
// concurrent writer.
type wsSink struct {
	conn   *websocket.Conn
	closed bool
	sync.Mutex
}

func (s *wsSink) Send(ev protocol.Event) error {
	b, err := protocol.Encode(ev)
	if err != nil {
		return err
	}
	return s.write(websocket.TextMessage, b)
}

func (s *wsSink) write(messageType int, data []byte) error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return errConnClosed
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.closed = true
		return err
	}
	return nil
}

func (s *wsSink) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
