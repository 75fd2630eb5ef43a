package game

import (
	"math"
	"time"
)

// Slot is the join position of a player in its lobby.
type Slot int

const (
	SlotFirst  Slot = 1
	SlotSecond Slot = 2
)

// Point is a trail sample, floored to whole units.
type Point struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Input is the latest direction flags received from a client.
type Input struct {
	Up    bool `json:"up"`
	Left  bool `json:"left"`
	Down  bool `json:"down"`
	Right bool `json:"right"`
}

// Player is a single contestant. Once Alive is false the player is inert.
type Player struct {
	ID      string
	Slot    Slot
	Color   string
	X, Y    float64
	DX, DY  float64
	Speed   float64
	Trail   []Point
	Alive   bool
	Input   Input
	InputAt time.Time
	Score   int
}

// Spawn places a player for its slot. The second slot mirrors the first on
// the opposite arena edge.
func Spawn(id string, slot Slot, r Rules) *Player {
	p := &Player{
		ID:    id,
		Slot:  slot,
		Y:     r.ArenaHeight / 2,
		Speed: r.PlayerSpeed,
		Alive: true,
	}
	if slot == SlotSecond {
		p.X = r.ArenaWidth - r.SpawnInset
		p.DX = -r.PlayerSpeed
		p.Color = ColorSecond
		return p
	}
	p.X = r.SpawnInset
	p.DX = r.PlayerSpeed
	p.Color = ColorFirst
	return p
}

// SetInput stores the latest input; it takes effect on the next tick.
func (p *Player) SetInput(in Input, at time.Time) {
	if !p.Alive {
		return
	}
	p.Input = in
	p.InputAt = at
}

// ApplyInput resolves the stored flags into an axis-aligned velocity.
// Opposing flags cancel. When both axes carry a direction, the axis
// perpendicular to the current motion wins so a held key still turns.
func (p *Player) ApplyInput() {
	if !p.Alive {
		return
	}
	h := axis(p.Input.Left, p.Input.Right)
	v := axis(p.Input.Up, p.Input.Down)

	switch {
	case h != 0 && v != 0:
		if p.DX != 0 {
			p.DX, p.DY = 0, v*p.Speed
		} else {
			p.DX, p.DY = h*p.Speed, 0
		}
	case h != 0:
		p.DX, p.DY = h*p.Speed, 0
	case v != 0:
		p.DX, p.DY = 0, v*p.Speed
	}
}

// Advance records the current position in the trail and moves one tick.
func (p *Player) Advance() {
	if !p.Alive {
		return
	}
	p.Trail = append(p.Trail, Point{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))})
	p.X += p.DX
	p.Y += p.DY
}

// Eliminate freezes the player.
func (p *Player) Eliminate() {
	p.Alive = false
}

// RecentTrail returns at most the last n trail points.
func (p *Player) RecentTrail(n int) []Point {
	if n <= 0 || len(p.Trail) <= n {
		return p.Trail
	}
	return p.Trail[len(p.Trail)-n:]
}

func axis(negative, positive bool) float64 {
	switch {
	case negative && !positive:
		return -1
	case positive && !negative:
		return 1
	}
	return 0
}
