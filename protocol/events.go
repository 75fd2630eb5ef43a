package protocol

// Outbound event types.
const (
	TypeConnected            = "connected"
	TypeLobbyCreated         = "lobbyCreated"
	TypeJoinedLobby          = "joinedLobby"
	TypeWaitingForOpponent   = "waitingForOpponent"
	TypeGameStarting         = "gameStarting"
	TypeLobbyList            = "lobbyList"
	TypeError                = "error"
	TypeOpponentLeft         = "opponentLeft"
	TypeOpponentDisconnected = "opponentDisconnected"
	TypeGameState            = "gameState"
)

// Error reasons carried by ErrorMessage.
const (
	ReasonNotFound         = "not_found"
	ReasonFull             = "full"
	ReasonAlreadyStarted   = "already_started"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonAlreadyInLobby   = "already_in_lobby"
	ReasonNotInLobby       = "not_in_lobby"
)

// Event is a message the server sends to one player. The set of
// implementations is closed.
type Event interface {
	Type() string
	isEvent()
}

type Connected struct {
	PlayerID string `json:"playerId" msgpack:"playerId"`
}

type LobbyCreated struct {
	Code     string `json:"code" msgpack:"code"`
	PlayerID string `json:"playerId" msgpack:"playerId"`
}

type JoinedLobby struct {
	Code     string `json:"code" msgpack:"code"`
	PlayerID string `json:"playerId" msgpack:"playerId"`
	Slot     int    `json:"slot" msgpack:"slot"`
	Color    string `json:"color" msgpack:"color"`
}

type WaitingForOpponent struct{}

type GameStarting struct{}

type LobbyInfo struct {
	Code        string `json:"code" msgpack:"code"`
	PlayerCount int    `json:"playerCount" msgpack:"playerCount"`
}

type LobbyList struct {
	Lobbies []LobbyInfo `json:"lobbies" msgpack:"lobbies"`
}

type ErrorMessage struct {
	Reason string `json:"reason" msgpack:"reason"`
}

type OpponentLeft struct{}

type OpponentDisconnected struct{}

func (Connected) Type() string            { return TypeConnected }
func (LobbyCreated) Type() string         { return TypeLobbyCreated }
func (JoinedLobby) Type() string          { return TypeJoinedLobby }
func (WaitingForOpponent) Type() string   { return TypeWaitingForOpponent }
func (GameStarting) Type() string         { return TypeGameStarting }
func (LobbyList) Type() string            { return TypeLobbyList }
func (ErrorMessage) Type() string         { return TypeError }
func (OpponentLeft) Type() string         { return TypeOpponentLeft }
func (OpponentDisconnected) Type() string { return TypeOpponentDisconnected }
func (GameState) Type() string            { return TypeGameState }

func (Connected) isEvent()            {}
func (LobbyCreated) isEvent()         {}
func (JoinedLobby) isEvent()          {}
func (WaitingForOpponent) isEvent()   {}
func (GameStarting) isEvent()         {}
func (LobbyList) isEvent()            {}
func (ErrorMessage) isEvent()         {}
func (OpponentLeft) isEvent()         {}
func (OpponentDisconnected) isEvent() {}
func (GameState) isEvent()            {}
