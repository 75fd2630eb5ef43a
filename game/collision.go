package game

import "math"

// Reason tells why a player was eliminated.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonWall          Reason = "wall"
	ReasonOwnTrail      Reason = "own_trail"
	ReasonOpponentTrail Reason = "opponent_trail"
)

// DetectCollision checks the player's current position. Walls are checked
// first, then the player's own trail without its latest grace points, then
// the trail of a live opponent. opponent may be nil.
func DetectCollision(p *Player, a *Arena, opponent *Player, grace int, halfSize float64) Reason {
	if !a.Contains(p.X, p.Y) {
		return ReasonWall
	}

	own := len(p.Trail) - grace
	if own > 0 && hitsTrail(p.X, p.Y, p.Trail[:own], halfSize) {
		return ReasonOwnTrail
	}

	if opponent != nil && opponent.Alive && hitsTrail(p.X, p.Y, opponent.Trail, halfSize) {
		return ReasonOpponentTrail
	}
	return ReasonNone
}

func hitsTrail(x, y float64, trail []Point, halfSize float64) bool {
	for _, pt := range trail {
		if math.Abs(x-float64(pt.X)) < halfSize && math.Abs(y-float64(pt.Y)) < halfSize {
			return true
		}
	}
	return false
}
