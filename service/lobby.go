package service

import (
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
)

// Lobby-related errors.
var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrAlreadyStarted   = errors.New("lobby already started")
	ErrCapacityExceeded = errors.New("lobby capacity exceeded")
	ErrAlreadyInLobby   = errors.New("player already in a lobby")
	ErrNotInLobby       = errors.New("player not in lobby")
	ErrUnknownPlayer    = errors.New("unknown player")
)

const maxPlayers = 2 // Players per lobby.

// State is the lifecycle stage of a lobby.
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateInProgress:
		return "in_progress"
	case StateGameOver:
		return "game_over"
	}
	return "unknown"
}

// Seat is what a player is given on joining.
type Seat struct {
	Slot  game.Slot
	Color string
}

// Lobby is one match: an arena, up to two players and the events of the
// current tick. All methods are safe for concurrent use.
type Lobby struct {
	code      string                // Human-typeable lobby code.
	rules     game.Rules            // Match tunables.
	arena     *game.Arena           // The shrinking play field.
	players   []*game.Player        // Players in join order.
	events    []protocol.MatchEvent // Events of the tick in progress.
	state     State                 // Lifecycle stage.
	winner    string                // Winner ID once game over, empty on draw/tie.
	startedAt time.Time             // Match start.
	tick      uint64                // Ticks processed since start.
	closed    bool                  // Set once the registry drops the lobby.
	now       func() time.Time      // Clock.
	sync.Mutex
}

// NewLobby creates a waiting lobby.
func NewLobby(code string, rules game.Rules, now func() time.Time) *Lobby {
	if now == nil {
		now = time.Now
	}
	return &Lobby{
		code:    code,
		rules:   rules,
		arena:   game.NewArena(rules),
		players: make([]*game.Player, 0, maxPlayers),
		state:   StateWaiting,
		now:     now,
	}
}

func (l *Lobby) Code() string {
	return l.code
}

func (l *Lobby) State() State {
	l.Lock()
	defer l.Unlock()
	return l.state
}

// Winner returns the winner ID, empty when there is none (yet).
func (l *Lobby) Winner() string {
	l.Lock()
	defer l.Unlock()
	return l.winner
}

// PlayerIDs returns the players in join order.
func (l *Lobby) PlayerIDs() []string {
	l.Lock()
	defer l.Unlock()
	ids := make([]string, 0, len(l.players))
	for _, p := range l.players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Info returns the lobby as listed to clients.
func (l *Lobby) Info() protocol.LobbyInfo {
	l.Lock()
	defer l.Unlock()
	return protocol.LobbyInfo{Code: l.code, PlayerCount: len(l.players)}
}

// Joinable reports whether the lobby is waiting for players.
func (l *Lobby) Joinable() bool {
	l.Lock()
	defer l.Unlock()
	return !l.closed && l.state == StateWaiting && len(l.players) < maxPlayers
}

// Join seats a player. A full lobby always reports ErrLobbyFull, whatever
// its state. started is true when this join filled the lobby and the match
// began.
func (l *Lobby) Join(playerID string) (seat Seat, started bool, err error) {
	l.Lock()
	defer l.Unlock()

	if l.closed {
		return Seat{}, false, ErrLobbyNotFound
	}
	if len(l.players) >= maxPlayers {
		return Seat{}, false, ErrLobbyFull
	}
	if l.state != StateWaiting {
		return Seat{}, false, ErrAlreadyStarted
	}
	for _, p := range l.players {
		if p.ID == playerID {
			return Seat{}, false, ErrAlreadyInLobby
		}
	}

	p := game.Spawn(playerID, game.Slot(len(l.players)+1), l.rules)
	l.players = append(l.players, p)
	if len(l.players) == maxPlayers {
		l.startLocked()
		started = true
	}
	return Seat{Slot: p.Slot, Color: p.Color}, started, nil
}

// Remove drops a player and returns the players left and the state the
// lobby was in.
func (l *Lobby) Remove(playerID string) ([]string, State) {
	l.Lock()
	defer l.Unlock()

	remaining := make([]string, 0, len(l.players))
	kept := l.players[:0]
	for _, p := range l.players {
		if p.ID == playerID {
			continue
		}
		kept = append(kept, p)
		remaining = append(remaining, p.ID)
	}
	l.players = kept
	return remaining, l.state
}

// SetInput stores a player's latest input. Input for a dead player or a
// lobby that is not running is dropped.
func (l *Lobby) SetInput(playerID string, in game.Input) error {
	l.Lock()
	defer l.Unlock()

	p := l.playerLocked(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if l.state != StateInProgress || !p.Alive {
		return nil
	}
	p.SetInput(in, l.now())
	return nil
}

// Close marks the lobby as dropped; later ticks are no-ops.
func (l *Lobby) Close() {
	l.Lock()
	defer l.Unlock()
	l.closed = true
}

// Tick advances the match by one step and returns the snapshot to
// broadcast. ok is false when the lobby is not running, in which case
// nothing changed. ended is true on the tick that decided the match.
func (l *Lobby) Tick() (snapshot protocol.GameState, ended bool, ok bool) {
	l.Lock()
	defer l.Unlock()

	if l.closed || l.state != StateInProgress {
		return protocol.GameState{}, false, false
	}

	now := l.now()
	elapsed := now.Sub(l.startedAt)
	timeLeft := max(l.rules.MatchDuration-elapsed, 0)
	ts := now.UnixMilli()

	l.arena.Shrink(elapsed)

	for i, p := range l.players {
		if !p.Alive {
			continue
		}
		p.ApplyInput()
		p.Advance()
		p.Score = game.Score(p, l.rules.PointsPerSegment)

		reason := game.DetectCollision(p, l.arena, l.opponentLocked(i), l.rules.TrailGrace, l.rules.PlayerHalfSize)
		if reason != game.ReasonNone {
			p.Eliminate()
			l.events = append(l.events, protocol.Elimination{PlayerID: p.ID, Reason: reason, Timestamp: ts})
		}
	}

	ended = l.resolveLocked(timeLeft, ts)
	l.tick++

	snapshot = l.snapshotLocked(timeLeft)
	l.events = nil
	return snapshot, ended, true
}

func (l *Lobby) startLocked() {
	l.state = StateInProgress
	l.startedAt = l.now()
	l.arena.StartedAt = l.startedAt
}

// resolveLocked applies the first matching outcome rule and reports whether
// the match ended.
func (l *Lobby) resolveLocked(timeLeft time.Duration, ts int64) bool {
	alive := make([]*game.Player, 0, len(l.players))
	for _, p := range l.players {
		if p.Alive {
			alive = append(alive, p)
		}
	}

	switch {
	case len(alive) == 1:
		l.winner = alive[0].ID
		l.events = append(l.events, protocol.Victory{PlayerID: l.winner, Timestamp: ts})
	case len(alive) == 0:
		l.winner = ""
		l.events = append(l.events, protocol.Draw{Timestamp: ts})
	case timeLeft <= 0:
		scores := make(map[string]int, len(l.players))
		best, bestScore, tie := "", -1, false
		for _, p := range l.players {
			p.Score = game.Score(p, l.rules.PointsPerSegment)
			scores[p.ID] = p.Score
			switch {
			case p.Score > bestScore:
				best, bestScore, tie = p.ID, p.Score, false
			case p.Score == bestScore:
				tie = true
			}
		}
		if tie {
			best = ""
		}
		l.winner = best
		l.events = append(l.events, protocol.TimeUp{Scores: scores, Winner: best, Timestamp: ts})
	default:
		return false
	}

	l.state = StateGameOver
	return true
}

func (l *Lobby) snapshotLocked(timeLeft time.Duration) protocol.GameState {
	players := make([]protocol.PlayerState, 0, len(l.players))
	for _, p := range l.players {
		recent := p.RecentTrail(l.rules.TrailSendCap)
		trail := make([]game.Point, len(recent))
		copy(trail, recent)
		players = append(players, protocol.PlayerState{
			ID:    p.ID,
			Slot:  int(p.Slot),
			X:     p.X,
			Y:     p.Y,
			DX:    p.DX,
			DY:    p.DY,
			Color: p.Color,
			Trail: trail,
			Alive: p.Alive,
			Score: p.Score,
		})
	}

	return protocol.GameState{
		Code: l.code,
		Tick: l.tick,
		Arena: protocol.ArenaState{
			X:         l.arena.X,
			Y:         l.arena.Y,
			Width:     l.arena.Width,
			Height:    l.arena.Height,
			Shrinking: l.arena.Shrinking,
		},
		Players:  players,
		TimeLeft: int(timeLeft / time.Second),
		Events:   l.events,
		GameOver: l.state == StateGameOver,
		Winner:   l.winner,
	}
}

func (l *Lobby) playerLocked(playerID string) *game.Player {
	for _, p := range l.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// opponentLocked returns the first other player; lobbies hold at most two.
func (l *Lobby) opponentLocked(i int) *game.Player {
	for j, p := range l.players {
		if j != i {
			return p
		}
	}
	return nil
}
