package game

import (
	"testing"
	"time"
)

func TestArenaShrinkWaitsForOffset(t *testing.T) {
	a := NewArena(DefaultRules())
	a.Shrink(a.ShrinkAfter - time.Millisecond)
	if a.Shrinking || a.Width != 400 || a.X != 0 {
		t.Fatalf("arena shrank before offset: %+v", a)
	}

	a.Shrink(a.ShrinkAfter)
	if !a.Shrinking {
		t.Fatalf("expected shrink to start at offset")
	}
	if a.X != 0.25 || a.Y != 0.25 || a.Width != 399.5 || a.Height != 399.5 {
		t.Fatalf("unexpected first shrink step: %+v", a)
	}

	// Sticky: a smaller elapsed value keeps shrinking.
	a.Shrink(0)
	if a.Width != 399 {
		t.Fatalf("expected shrink to keep going, width=%f", a.Width)
	}
}

func TestArenaShrinkStopsAtFloor(t *testing.T) {
	r := DefaultRules()
	r.ArenaWidth, r.ArenaHeight = 10, 20
	r.MinArenaSize = 6
	r.ShrinkRate = 1
	r.ShrinkAfter = 0
	a := NewArena(r)

	for range 50 {
		a.Shrink(time.Second)
	}
	if a.Width != 6 || a.X != 2 {
		t.Fatalf("width floor not honored: x=%f width=%f", a.X, a.Width)
	}
	if a.Height != 6 || a.Y != 7 {
		t.Fatalf("height floor not honored: y=%f height=%f", a.Y, a.Height)
	}
}

func TestArenaContainsIsHalfOpen(t *testing.T) {
	a := &Arena{X: 10, Y: 10, Width: 100, Height: 50}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{109.9, 59.9, true},
		{110, 20, false},
		{20, 60, false},
		{9.99, 20, false},
		{20, 9.99, false},
	}
	for _, tt := range tests {
		if got := a.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSpawnMirrorsSecondSlot(t *testing.T) {
	r := DefaultRules()
	a := Spawn("a", SlotFirst, r)
	b := Spawn("b", SlotSecond, r)

	if a.X != 50 || a.Y != 200 || a.DX != 2 || a.DY != 0 {
		t.Fatalf("unexpected first spawn: %+v", a)
	}
	if b.X != 350 || b.Y != 200 || b.DX != -2 || b.DY != 0 {
		t.Fatalf("unexpected second spawn: %+v", b)
	}
	if a.Color == b.Color {
		t.Fatalf("expected distinct colors, both %q", a.Color)
	}
}

func TestApplyInput(t *testing.T) {
	tests := []struct {
		name           string
		dx, dy         float64
		in             Input
		wantDX, wantDY float64
	}{
		{"no input keeps velocity", 2, 0, Input{}, 2, 0},
		{"up turns", 2, 0, Input{Up: true}, 0, -2},
		{"down turns", 2, 0, Input{Down: true}, 0, 2},
		{"left reverses", 2, 0, Input{Left: true}, -2, 0},
		{"up and down cancel", 2, 0, Input{Up: true, Down: true}, 2, 0},
		{"left and right cancel", 0, 2, Input{Left: true, Right: true}, 0, 2},
		{"cancelled axis lets other axis through", 2, 0, Input{Left: true, Right: true, Up: true}, 0, -2},
		{"both axes turn from horizontal", 2, 0, Input{Up: true, Right: true}, 0, -2},
		{"both axes turn from vertical", 0, 2, Input{Down: true, Left: true}, -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Alive: true, Speed: 2, DX: tt.dx, DY: tt.dy}
			p.SetInput(tt.in, time.Now())
			p.ApplyInput()
			if p.DX != tt.wantDX || p.DY != tt.wantDY {
				t.Fatalf("velocity = (%v, %v), want (%v, %v)", p.DX, p.DY, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestAdvanceGrowsTrailWhileAlive(t *testing.T) {
	p := &Player{Alive: true, Speed: 2, X: 10.7, Y: 5.2, DX: 2}
	p.Advance()
	if len(p.Trail) != 1 || p.Trail[0] != (Point{X: 10, Y: 5}) {
		t.Fatalf("unexpected trail: %+v", p.Trail)
	}
	if p.X != 12.7 || p.Y != 5.2 {
		t.Fatalf("unexpected position: (%v, %v)", p.X, p.Y)
	}

	p.Eliminate()
	p.SetInput(Input{Up: true}, time.Now())
	p.ApplyInput()
	p.Advance()
	if len(p.Trail) != 1 || p.X != 12.7 || p.DY != 0 {
		t.Fatalf("dead player moved: %+v", p)
	}
}

func TestRecentTrail(t *testing.T) {
	p := &Player{Trail: []Point{{1, 1}, {2, 2}, {3, 3}}}
	if got := p.RecentTrail(2); len(got) != 2 || got[0] != (Point{2, 2}) {
		t.Fatalf("unexpected recent trail: %+v", got)
	}
	if got := p.RecentTrail(10); len(got) != 3 {
		t.Fatalf("expected full trail, got %d", len(got))
	}
}

func TestDetectCollision(t *testing.T) {
	arena := &Arena{Width: 100, Height: 100}
	trail := func(n int, x int) []Point {
		pts := make([]Point, 0, n)
		for i := range n {
			pts = append(pts, Point{X: x, Y: i})
		}
		return pts
	}

	t.Run("none", func(t *testing.T) {
		p := &Player{Alive: true, X: 50, Y: 50}
		if got := DetectCollision(p, arena, nil, 10, 2); got != ReasonNone {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("wall wins over trails", func(t *testing.T) {
		p := &Player{Alive: true, X: 100, Y: 5, Trail: trail(20, 100)}
		opp := &Player{Alive: true, Trail: []Point{{100, 5}}}
		if got := DetectCollision(p, arena, opp, 10, 2); got != ReasonWall {
			t.Fatalf("got %q, want wall", got)
		}
	})

	t.Run("own trail outside grace", func(t *testing.T) {
		p := &Player{Alive: true, X: 5, Y: 0, Trail: trail(11, 5)}
		if got := DetectCollision(p, arena, nil, 10, 2); got != ReasonOwnTrail {
			t.Fatalf("got %q, want own_trail", got)
		}
	})

	t.Run("own trail inside grace ignored", func(t *testing.T) {
		p := &Player{Alive: true, X: 5, Y: 9, Trail: trail(10, 5)}
		if got := DetectCollision(p, arena, nil, 10, 2); got != ReasonNone {
			t.Fatalf("got %q, want none", got)
		}
	})

	t.Run("own trail wins over opponent trail", func(t *testing.T) {
		p := &Player{Alive: true, X: 5, Y: 0, Trail: trail(11, 5)}
		opp := &Player{Alive: true, Trail: []Point{{5, 0}}}
		if got := DetectCollision(p, arena, opp, 10, 2); got != ReasonOwnTrail {
			t.Fatalf("got %q, want own_trail", got)
		}
	})

	t.Run("opponent trail has no grace", func(t *testing.T) {
		p := &Player{Alive: true, X: 30.5, Y: 41}
		opp := &Player{Alive: true, Trail: []Point{{31, 40}}}
		if got := DetectCollision(p, arena, opp, 10, 2); got != ReasonOpponentTrail {
			t.Fatalf("got %q, want opponent_trail", got)
		}
	})

	t.Run("proximity is strict", func(t *testing.T) {
		p := &Player{Alive: true, X: 33, Y: 40}
		opp := &Player{Alive: true, Trail: []Point{{31, 40}}}
		if got := DetectCollision(p, arena, opp, 10, 2); got != ReasonNone {
			t.Fatalf("got %q, want none", got)
		}
	})

	t.Run("dead opponent trail ignored", func(t *testing.T) {
		p := &Player{Alive: true, X: 31, Y: 40}
		opp := &Player{Alive: false, Trail: []Point{{31, 40}}}
		if got := DetectCollision(p, arena, opp, 10, 2); got != ReasonNone {
			t.Fatalf("got %q, want none", got)
		}
	})
}

func TestScore(t *testing.T) {
	p := &Player{Trail: make([]Point, 7)}
	if got := Score(p, 3); got != 21 {
		t.Fatalf("Score = %d, want 21", got)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Rules)
		want   error
	}{
		{"spawn outside arena", func(r *Rules) { r.SpawnInset = 300 }, ErrInvalidSpawn},
		{"zero tick", func(r *Rules) { r.TickPeriod = 0 }, ErrInvalidTick},
		{"negative trail grace", func(r *Rules) { r.TrailGrace = -1 }, ErrInvalidGrace},
		{"negative shrink rate", func(r *Rules) { r.ShrinkRate = -0.25 }, ErrInvalidShrink},
		{"zero half size", func(r *Rules) { r.PlayerHalfSize = 0 }, ErrInvalidHalfSize},
		{"negative half size", func(r *Rules) { r.PlayerHalfSize = -2 }, ErrInvalidHalfSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			if err := r.Validate(); err != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	r := DefaultRules()
	r.TrailGrace = 0
	r.ShrinkRate = 0
	if err := r.Validate(); err != nil {
		t.Fatalf("zero grace and shrink rate should be valid: %v", err)
	}
}

func TestFractionalRules(t *testing.T) {
	r := DefaultRules()
	r.ArenaWidth = 401.5
	r.SpawnInset = 50.5
	r.PlayerSpeed = 1.5
	r.PlayerHalfSize = 0.5
	if err := r.Validate(); err != nil {
		t.Fatalf("fractional rules invalid: %v", err)
	}

	p := Spawn("b", SlotSecond, r)
	if p.X != 351 || p.DX != -1.5 {
		t.Fatalf("spawned at %v moving %v", p.X, p.DX)
	}
	p.Advance()
	if p.X != 349.5 {
		t.Fatalf("x = %v, want 349.5", p.X)
	}
}
