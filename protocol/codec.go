package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/vmihailenco/msgpack/v5"
)

// Inbound action types.
const (
	ActionCreateLobby = "createLobby"
	ActionJoinLobby   = "joinLobby"
	ActionListLobbies = "listLobbies"
	ActionInput       = "input"
	ActionLeaveLobby  = "leaveLobby"
)

// InputRecordType is the only inbound UDP record type.
const InputRecordType byte = 3

// Outbound UDP record types.
const (
	connectedRecordType byte = 10 + iota
	lobbyCreatedRecordType
	joinedLobbyRecordType
	waitingRecordType
	gameStartingRecordType
	lobbyListRecordType
	errorRecordType
	opponentLeftRecordType
	opponentDisconnectedRecordType
	gameStateRecordType
)

// Codec errors.
var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrEmptyPayload  = errors.New("empty payload")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrInvalidRecord = errors.New("invalid record")
)

// Envelope is the JSON frame used on the WebSocket transport.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinLobby struct {
	Code string `json:"code"`
}

// Encode wraps an event in an Envelope.
func Encode(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, ErrUnknownEvent
	}
	pb, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", ev.Type(), err)
	}
	return json.Marshal(Envelope{Type: ev.Type(), Payload: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("%w for type %q", ErrEmptyPayload, env.Type)
	}
	err := json.Unmarshal(env.Payload, &out)
	return out, err
}

// EncodeRecord returns the UDP record type and msgpack body for an event.
func EncodeRecord(ev Event) (byte, []byte, error) {
	var rt byte
	var body any = ev
	switch e := ev.(type) {
	case Connected:
		rt = connectedRecordType
	case LobbyCreated:
		rt = lobbyCreatedRecordType
	case JoinedLobby:
		rt = joinedLobbyRecordType
	case WaitingForOpponent:
		rt = waitingRecordType
	case GameStarting:
		rt = gameStartingRecordType
	case LobbyList:
		rt = lobbyListRecordType
	case ErrorMessage:
		rt = errorRecordType
	case OpponentLeft:
		rt = opponentLeftRecordType
	case OpponentDisconnected:
		rt = opponentDisconnectedRecordType
	case GameState:
		rt = gameStateRecordType
		body = e.wire()
	default:
		return 0, nil, ErrUnknownEvent
	}

	b, err := msgpack.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding %s record: %w", ev.Type(), err)
	}
	return rt, b, nil
}

// Input bits of an input record.
const (
	inputUp byte = 1 << iota
	inputLeft
	inputDown
	inputRight
)

func EncodeInputMask(in game.Input) byte {
	var m byte
	if in.Up {
		m |= inputUp
	}
	if in.Left {
		m |= inputLeft
	}
	if in.Down {
		m |= inputDown
	}
	if in.Right {
		m |= inputRight
	}
	return m
}

// DecodeInputRecord reads the single mask byte of an input record.
func DecodeInputRecord(payload []byte) (game.Input, error) {
	if len(payload) != 1 || payload[0]&^(inputUp|inputLeft|inputDown|inputRight) != 0 {
		return game.Input{}, ErrInvalidRecord
	}
	m := payload[0]
	return game.Input{
		Up:    m&inputUp != 0,
		Left:  m&inputLeft != 0,
		Down:  m&inputDown != 0,
		Right: m&inputRight != 0,
	}, nil
}

type matchEventWire struct {
	Type      string         `json:"type" msgpack:"type"`
	PlayerID  string         `json:"playerId,omitempty" msgpack:"playerId,omitempty"`
	Reason    string         `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Scores    map[string]int `json:"scores,omitempty" msgpack:"scores,omitempty"`
	Winner    string         `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Timestamp int64          `json:"timestamp" msgpack:"timestamp"`
}

type gameStateWire struct {
	Code     string           `json:"code" msgpack:"code"`
	Tick     uint64           `json:"tick" msgpack:"tick"`
	Arena    ArenaState       `json:"arena" msgpack:"arena"`
	Players  []PlayerState    `json:"players" msgpack:"players"`
	TimeLeft int              `json:"timeLeft" msgpack:"timeLeft"`
	Events   []matchEventWire `json:"events" msgpack:"events"`
	GameOver bool             `json:"gameOver" msgpack:"gameOver"`
	Winner   string           `json:"winner" msgpack:"winner"`
}

// MarshalJSON flattens match events so each carries its kind as "type".
func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

func (s GameState) wire() gameStateWire {
	events := make([]matchEventWire, 0, len(s.Events))
	for _, ev := range s.Events {
		w := matchEventWire{Type: ev.Kind()}
		switch e := ev.(type) {
		case Elimination:
			w.PlayerID, w.Reason, w.Timestamp = e.PlayerID, string(e.Reason), e.Timestamp
		case Victory:
			w.PlayerID, w.Timestamp = e.PlayerID, e.Timestamp
		case Draw:
			w.Timestamp = e.Timestamp
		case TimeUp:
			w.Scores, w.Winner, w.Timestamp = e.Scores, e.Winner, e.Timestamp
		}
		events = append(events, w)
	}
	players := s.Players
	if players == nil {
		players = []PlayerState{}
	}
	return gameStateWire{
		Code:     s.Code,
		Tick:     s.Tick,
		Arena:    s.Arena,
		Players:  players,
		TimeLeft: s.TimeLeft,
		Events:   events,
		GameOver: s.GameOver,
		Winner:   s.Winner,
	}
}
