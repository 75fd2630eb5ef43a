package protocol

import "github.com/beka-birhanu/vinom-territory-server/game"

// Match event kinds carried inside a GameState.
const (
	KindElimination = "elimination"
	KindVictory     = "victory"
	KindDraw        = "draw"
	KindTimeUp      = "time_up"
)

// MatchEvent is something that happened during a tick. The set of
// implementations is closed.
type MatchEvent interface {
	Kind() string
	isMatchEvent()
}

type Elimination struct {
	PlayerID  string      `json:"playerId"`
	Reason    game.Reason `json:"reason"`
	Timestamp int64       `json:"timestamp"`
}

type Victory struct {
	PlayerID  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
}

type Draw struct {
	Timestamp int64 `json:"timestamp"`
}

// TimeUp carries every player's final score. Winner is empty on a tie.
type TimeUp struct {
	Scores    map[string]int `json:"scores"`
	Winner    string         `json:"winner"`
	Timestamp int64          `json:"timestamp"`
}

func (Elimination) Kind() string { return KindElimination }
func (Victory) Kind() string     { return KindVictory }
func (Draw) Kind() string        { return KindDraw }
func (TimeUp) Kind() string      { return KindTimeUp }

func (Elimination) isMatchEvent() {}
func (Victory) isMatchEvent()     {}
func (Draw) isMatchEvent()        {}
func (TimeUp) isMatchEvent()      {}

type ArenaState struct {
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Width     float64 `json:"width" msgpack:"width"`
	Height    float64 `json:"height" msgpack:"height"`
	Shrinking bool    `json:"shrinking" msgpack:"shrinking"`
}

type PlayerState struct {
	ID    string       `json:"id" msgpack:"id"`
	Slot  int          `json:"slot" msgpack:"slot"`
	X     float64      `json:"x" msgpack:"x"`
	Y     float64      `json:"y" msgpack:"y"`
	DX    float64      `json:"dx" msgpack:"dx"`
	DY    float64      `json:"dy" msgpack:"dy"`
	Color string       `json:"color" msgpack:"color"`
	Trail []game.Point `json:"trail" msgpack:"trail"`
	Alive bool         `json:"alive" msgpack:"alive"`
	Score int          `json:"score" msgpack:"score"`
}

// GameState is the per-tick snapshot of one lobby.
type GameState struct {
	Code     string        `json:"code"`
	Tick     uint64        `json:"tick"`
	Arena    ArenaState    `json:"arena"`
	Players  []PlayerState `json:"players"`
	TimeLeft int           `json:"timeLeft"`
	Events   []MatchEvent  `json:"events"`
	GameOver bool          `json:"gameOver"`
	Winner   string        `json:"winner"`
}
