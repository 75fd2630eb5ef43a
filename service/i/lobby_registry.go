package i

import (
	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
)

// LobbyRegistry is the entry point the transports route inbound requests to.
type LobbyRegistry interface {
	// CreateLobby creates a lobby and joins the requesting player to it.
	CreateLobby(playerID string) (string, error)

	// Join attaches a player to a waiting lobby.
	Join(code, playerID string) (game.Slot, error)

	// Leave removes a player from its lobby. An empty code matches any lobby.
	Leave(code, playerID string) error

	// Disconnect is called once when a player's transport closes.
	Disconnect(playerID string)

	// List returns the lobbies that can still be joined.
	List() []protocol.LobbyInfo

	// Input stores the latest direction flags of a player.
	Input(playerID string, in game.Input) error

	// HasPlayer reports whether the player currently holds a lobby.
	HasPlayer(playerID string) bool

	// SetReleaseHandler registers a callback for players that stop holding
	// a lobby.
	SetReleaseHandler(fn func(playerID string))
}
