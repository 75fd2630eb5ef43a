package game

import (
	"errors"
	"time"
)

// Rule validation errors.
var (
	ErrInvalidArena    = errors.New("arena dimensions must be positive")
	ErrInvalidSpeed    = errors.New("player speed must be positive")
	ErrInvalidTick     = errors.New("tick period must be positive")
	ErrInvalidDuration = errors.New("match duration must be positive")
	ErrInvalidSpawn    = errors.New("spawn inset must lie inside the arena")
	ErrInvalidGrace    = errors.New("trail grace must not be negative")
	ErrInvalidShrink   = errors.New("shrink rate must not be negative")
	ErrInvalidHalfSize = errors.New("player half size must be positive")
)

const (
	ColorFirst  = "#3b82f6"
	ColorSecond = "#ef4444"
)

// Rules holds every tunable of a match.
type Rules struct {
	ArenaWidth   float64 // Initial arena width.
	ArenaHeight  float64 // Initial arena height.
	MinArenaSize float64 // Arena dimensions never shrink below this.
	SpawnInset   float64 // Distance of spawn points from the left/right edges.

	PlayerSpeed    float64 // Units moved per tick.
	PlayerHalfSize float64 // Proximity threshold for trail hits.

	TickPeriod    time.Duration
	MatchDuration time.Duration

	ShrinkAfter time.Duration // Offset from match start before the arena starts shrinking.
	ShrinkRate  float64       // Units per tick taken from each side.

	TrailGrace       int // Most recent own trail points ignored by collision.
	TrailSendCap     int // Max trail points put in a snapshot.
	PointsPerSegment int
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		ArenaWidth:       400,
		ArenaHeight:      400,
		MinArenaSize:     40,
		SpawnInset:       50,
		PlayerSpeed:      2,
		PlayerHalfSize:   2,
		TickPeriod:       50 * time.Millisecond,
		MatchDuration:    2 * time.Minute,
		ShrinkAfter:      30 * time.Second,
		ShrinkRate:       0.25,
		TrailGrace:       10,
		TrailSendCap:     1000,
		PointsPerSegment: 1,
	}
}

// Validate reports the first rule that cannot produce a playable match.
func (r Rules) Validate() error {
	if r.ArenaWidth <= 0 || r.ArenaHeight <= 0 || r.MinArenaSize < 0 {
		return ErrInvalidArena
	}
	if r.PlayerSpeed <= 0 {
		return ErrInvalidSpeed
	}
	if r.PlayerHalfSize <= 0 {
		return ErrInvalidHalfSize
	}
	if r.TickPeriod <= 0 {
		return ErrInvalidTick
	}
	if r.MatchDuration <= 0 {
		return ErrInvalidDuration
	}
	if r.SpawnInset < 0 || r.SpawnInset*2 >= r.ArenaWidth {
		return ErrInvalidSpawn
	}
	if r.ShrinkRate < 0 {
		return ErrInvalidShrink
	}
	if r.TrailGrace < 0 {
		return ErrInvalidGrace
	}
	return nil
}
