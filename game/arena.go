package game

import "time"

// Arena is the playable rectangle. It starts shrinking once ShrinkAfter has
// elapsed since StartedAt and never stops afterwards.
type Arena struct {
	X, Y          float64
	Width, Height float64
	Shrinking     bool
	ShrinkAfter   time.Duration
	ShrinkRate    float64
	MinSize       float64
	StartedAt     time.Time
}

// NewArena creates a full size arena at the origin.
func NewArena(r Rules) *Arena {
	return &Arena{
		Width:       r.ArenaWidth,
		Height:      r.ArenaHeight,
		ShrinkAfter: r.ShrinkAfter,
		ShrinkRate:  r.ShrinkRate,
		MinSize:     r.MinArenaSize,
	}
}

// Shrink is called once per tick with the time elapsed since match start.
// An axis whose next step would cross MinSize holds its origin and size.
func (a *Arena) Shrink(elapsed time.Duration) {
	if !a.Shrinking {
		if elapsed < a.ShrinkAfter {
			return
		}
		a.Shrinking = true
	}

	step := 2 * a.ShrinkRate
	if a.Width-step >= a.MinSize {
		a.X += a.ShrinkRate
		a.Width -= step
	}
	if a.Height-step >= a.MinSize {
		a.Y += a.ShrinkRate
		a.Height -= step
	}
}

// Contains uses half-open intervals: the far edges are out of bounds.
func (a *Arena) Contains(x, y float64) bool {
	return x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height
}
