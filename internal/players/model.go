package players

// Player is one scoreboard row. Names are unique within a room.
type Player struct {
	Name  string
	Score int
}

// Effect is a score change that was actually applied to a player.
type Effect struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// Sum returns the total of all deltas.
func Sum(effects []Effect) int {
	total := 0
	for _, e := range effects {
		total += e.Delta
	}
	return total
}
