package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
)

const (
	defaultCodeLength   = 6
	defaultCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	defaultMaxLobbies   = 100
	defaultCleanupDelay = 3 * time.Second
)

// Registry configuration errors.
var (
	ErrNoBroadcaster = errors.New("broadcaster is required")
	ErrNoLogger      = errors.New("logger is required")
)

// LobbyRegistry owns every lobby of the process and the player to lobby
// index. It starts a lobby's scheduler task when the lobby fills and drops
// the lobby when it empties or after the match ended.
type LobbyRegistry struct {
	rules         game.Rules
	codeLength    int
	codeAlphabet  string
	maxLobbies    int
	cleanupDelay  time.Duration
	lobbies       map[string]*Lobby
	playerToLobby map[string]string
	scheduler     *Scheduler
	broadcaster   i.Broadcaster
	logger        general_i.Logger
	now           func() time.Time
	onRelease     func(playerID string)
	sync.RWMutex
}

type Config struct {
	Rules        game.Rules
	CodeLength   int
	CodeAlphabet string
	MaxLobbies   int
	CleanupDelay time.Duration
	Broadcaster  i.Broadcaster
	Logger       general_i.Logger
	Clock        func() time.Time // Defaults to time.Now.
}

func NewLobbyRegistry(c *Config) (*LobbyRegistry, error) {
	if err := c.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if c.Broadcaster == nil {
		return nil, ErrNoBroadcaster
	}
	if c.Logger == nil {
		return nil, ErrNoLogger
	}

	r := &LobbyRegistry{
		rules:         c.Rules,
		codeLength:    c.CodeLength,
		codeAlphabet:  c.CodeAlphabet,
		maxLobbies:    c.MaxLobbies,
		cleanupDelay:  c.CleanupDelay,
		lobbies:       make(map[string]*Lobby),
		playerToLobby: make(map[string]string),
		scheduler:     NewScheduler(),
		broadcaster:   c.Broadcaster,
		logger:        c.Logger,
		now:           c.Clock,
	}
	if r.codeLength <= 0 {
		r.codeLength = defaultCodeLength
	}
	if r.codeAlphabet == "" {
		r.codeAlphabet = defaultCodeAlphabet
	}
	if r.maxLobbies <= 0 {
		r.maxLobbies = defaultMaxLobbies
	}
	if r.cleanupDelay <= 0 {
		r.cleanupDelay = defaultCleanupDelay
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// CreateLobby creates a waiting lobby with the player in the first slot.
func (r *LobbyRegistry) CreateLobby(playerID string) (string, error) {
	r.Lock()
	if _, ok := r.playerToLobby[playerID]; ok {
		r.Unlock()
		r.reject(playerID, ErrAlreadyInLobby)
		return "", ErrAlreadyInLobby
	}

	l, err := r.createLocked()
	if err != nil {
		r.Unlock()
		r.reject(playerID, err)
		return "", err
	}
	seat, _, err := l.Join(playerID)
	if err != nil {
		_ = r.dropLocked(l.Code())
		r.Unlock()
		r.reject(playerID, err)
		return "", err
	}
	r.playerToLobby[playerID] = l.Code()
	r.Unlock()

	r.logger.Info(fmt.Sprintf("player %s created lobby: %s", playerID, l.Code()))
	r.broadcaster.Deliver(playerID, protocol.LobbyCreated{Code: l.Code(), PlayerID: playerID})
	r.broadcaster.Deliver(playerID, protocol.JoinedLobby{Code: l.Code(), PlayerID: playerID, Slot: int(seat.Slot), Color: seat.Color})
	r.broadcaster.Deliver(playerID, protocol.WaitingForOpponent{})
	return l.Code(), nil
}

// Join seats a player in a waiting lobby. The match starts when the second
// player joins.
func (r *LobbyRegistry) Join(code, playerID string) (game.Slot, error) {
	code = normalizeCode(code)

	r.Lock()
	if _, ok := r.playerToLobby[playerID]; ok {
		r.Unlock()
		r.reject(playerID, ErrAlreadyInLobby)
		return 0, ErrAlreadyInLobby
	}
	l, ok := r.lobbies[code]
	if !ok {
		r.Unlock()
		r.reject(playerID, ErrLobbyNotFound)
		return 0, ErrLobbyNotFound
	}
	seat, started, err := l.Join(playerID)
	if err != nil {
		r.Unlock()
		r.reject(playerID, err)
		return 0, err
	}
	r.playerToLobby[playerID] = code
	if started {
		r.scheduler.Start(code, r.rules.TickPeriod, func() { r.tick(code) })
	}
	players := l.PlayerIDs()
	r.Unlock()

	r.broadcaster.Deliver(playerID, protocol.JoinedLobby{Code: code, PlayerID: playerID, Slot: int(seat.Slot), Color: seat.Color})
	if !started {
		r.broadcaster.Deliver(playerID, protocol.WaitingForOpponent{})
		return seat.Slot, nil
	}

	r.logger.Info(fmt.Sprintf("started lobby %s for players: %v", code, players))
	for _, id := range players {
		r.broadcaster.Deliver(id, protocol.GameStarting{})
	}
	return seat.Slot, nil
}

// Leave removes the player from its lobby. When code is not empty it must
// name the player's lobby.
func (r *LobbyRegistry) Leave(code, playerID string) error {
	code = normalizeCode(code)

	r.Lock()
	current, ok := r.playerToLobby[playerID]
	if !ok || (code != "" && code != current) {
		r.Unlock()
		r.reject(playerID, ErrNotInLobby)
		return ErrNotInLobby
	}
	notify, released := r.removePlayerLocked(current, playerID)
	r.Unlock()

	r.release(released)
	r.logger.Info(fmt.Sprintf("player %s left lobby: %s", playerID, current))
	for _, id := range notify {
		r.broadcaster.Deliver(id, protocol.OpponentLeft{})
	}
	return nil
}

// Disconnect removes a player whose transport closed. Players that hold no
// lobby are ignored.
func (r *LobbyRegistry) Disconnect(playerID string) {
	r.Lock()
	current, ok := r.playerToLobby[playerID]
	if !ok {
		r.Unlock()
		return
	}
	notify, released := r.removePlayerLocked(current, playerID)
	r.Unlock()

	r.release(released)
	r.logger.Info(fmt.Sprintf("player %s disconnected from lobby: %s", playerID, current))
	for _, id := range notify {
		r.broadcaster.Deliver(id, protocol.OpponentDisconnected{})
	}
}

// List returns the joinable lobbies sorted by code.
func (r *LobbyRegistry) List() []protocol.LobbyInfo {
	r.RLock()
	defer r.RUnlock()

	out := make([]protocol.LobbyInfo, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		if l.Joinable() {
			out = append(out, l.Info())
		}
	}
	slices.SortFunc(out, func(a, b protocol.LobbyInfo) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// Input stores a player's latest input for the next tick.
func (r *LobbyRegistry) Input(playerID string, in game.Input) error {
	r.RLock()
	l := r.lobbies[r.playerToLobby[playerID]]
	r.RUnlock()

	if l == nil {
		return ErrUnknownPlayer
	}
	return l.SetInput(playerID, in)
}

// SetReleaseHandler registers fn to be called, outside the registry lock,
// for every player that stops holding a lobby.
func (r *LobbyRegistry) SetReleaseHandler(fn func(playerID string)) {
	r.Lock()
	defer r.Unlock()
	r.onRelease = fn
}

func (r *LobbyRegistry) HasPlayer(playerID string) bool {
	r.RLock()
	defer r.RUnlock()
	_, ok := r.playerToLobby[playerID]
	return ok
}

// Lobby returns the lobby for a code.
func (r *LobbyRegistry) Lobby(code string) (*Lobby, bool) {
	r.RLock()
	defer r.RUnlock()
	l, ok := r.lobbies[normalizeCode(code)]
	return l, ok
}

// StopAll stops every scheduler task and drops every lobby.
func (r *LobbyRegistry) StopAll() {
	r.Lock()
	r.scheduler.StopAll()
	for _, l := range r.lobbies {
		l.Close()
	}
	released := make([]string, 0, len(r.playerToLobby))
	for id := range r.playerToLobby {
		released = append(released, id)
	}
	clear(r.lobbies)
	clear(r.playerToLobby)
	r.Unlock()

	r.release(released)
}

// tick runs one step of a lobby and hands the snapshot to the broadcaster.
// A lobby that is gone or not running is skipped.
func (r *LobbyRegistry) tick(code string) {
	r.RLock()
	l, ok := r.lobbies[code]
	r.RUnlock()
	if !ok {
		return
	}

	snapshot, ended, ok := l.Tick()
	if !ok {
		return
	}
	for _, p := range snapshot.Players {
		r.broadcaster.Deliver(p.ID, snapshot)
	}

	if ended {
		r.logger.Info(fmt.Sprintf("lobby %s finished, winner: %q", code, snapshot.Winner))
		time.AfterFunc(r.cleanupDelay, func() { r.retire(code, l) })
	}
}

// retire drops a finished lobby unless it was already replaced or removed.
func (r *LobbyRegistry) retire(code string, l *Lobby) {
	r.Lock()
	if r.lobbies[code] != l {
		r.Unlock()
		return
	}
	released := r.dropLocked(code)
	r.Unlock()

	r.release(released)
	r.logger.Info(fmt.Sprintf("retired lobby: %s", code))
}

func (r *LobbyRegistry) release(playerIDs []string) {
	r.RLock()
	fn := r.onRelease
	r.RUnlock()
	if fn == nil {
		return
	}
	for _, id := range playerIDs {
		fn(id)
	}
}

func (r *LobbyRegistry) createLocked() (*Lobby, error) {
	if len(r.lobbies) >= r.maxLobbies {
		return nil, ErrCapacityExceeded
	}

	code, err := r.generateCode()
	for err == nil {
		if _, exists := r.lobbies[code]; !exists {
			break
		}
		code, err = r.generateCode()
	}
	if err != nil {
		return nil, fmt.Errorf("generating lobby code: %w", err)
	}

	l := NewLobby(code, r.rules, r.now)
	r.lobbies[code] = l
	return l, nil
}

// removePlayerLocked detaches a player and returns who should be told and
// who no longer holds a lobby. A lobby left empty, or one that loses a
// player after the match started, is dropped.
func (r *LobbyRegistry) removePlayerLocked(code, playerID string) (notify, released []string) {
	delete(r.playerToLobby, playerID)
	released = []string{playerID}
	l, ok := r.lobbies[code]
	if !ok {
		return nil, released
	}

	remaining, state := l.Remove(playerID)
	if len(remaining) == 0 || state != StateWaiting {
		released = append(released, r.dropLocked(code)...)
	}
	return remaining, released
}

// dropLocked removes a lobby and returns the players it released.
func (r *LobbyRegistry) dropLocked(code string) []string {
	l, ok := r.lobbies[code]
	if !ok {
		return nil
	}
	r.scheduler.Stop(code)
	l.Close()
	var released []string
	for _, id := range l.PlayerIDs() {
		if r.playerToLobby[id] == code {
			delete(r.playerToLobby, id)
			released = append(released, id)
		}
	}
	delete(r.lobbies, code)
	return released
}

func (r *LobbyRegistry) reject(playerID string, err error) {
	r.logger.Warning(fmt.Sprintf("rejected request from player %s: %s", playerID, err))
	r.broadcaster.Deliver(playerID, protocol.ErrorMessage{Reason: ErrorReason(err)})
}

func (r *LobbyRegistry) generateCode() (string, error) {
	b := make([]byte, r.codeLength)
	n := big.NewInt(int64(len(r.codeAlphabet)))
	for k := range b {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		b[k] = r.codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// ErrorReason maps a registry error to the reason sent to clients.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrLobbyNotFound):
		return protocol.ReasonNotFound
	case errors.Is(err, ErrLobbyFull):
		return protocol.ReasonFull
	case errors.Is(err, ErrAlreadyStarted):
		return protocol.ReasonAlreadyStarted
	case errors.Is(err, ErrCapacityExceeded):
		return protocol.ReasonCapacityExceeded
	case errors.Is(err, ErrAlreadyInLobby):
		return protocol.ReasonAlreadyInLobby
	case errors.Is(err, ErrNotInLobby), errors.Is(err, ErrUnknownPlayer):
		return protocol.ReasonNotInLobby
	}
	return err.Error()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
