package game

// Score approximates claimed territory by trail length. It is not an area.
func Score(p *Player, pointsPerSegment int) int {
	return len(p.Trail) * pointsPerSegment
}
