package analytics

import "quizbuzzer/internal/db"

// PlayerStats aggregates one player name across every archived room.
type PlayerStats struct {
	Player  string  `json:"player"`
	Rooms   int     `json:"rooms"`
	Buzzes  int     `json:"buzzes"`
	Correct int     `json:"correct"`
	Wrong   int     `json:"wrong"`
	Badges  []Badge `json:"badges,omitempty"`
}

// Accuracy is the share of adjudicated buzzes judged correct, in percent.
func (s PlayerStats) Accuracy() float64 {
	judged := s.Correct + s.Wrong
	if judged == 0 {
		return 0
	}
	return float64(s.Correct) / float64(judged) * 100
}

type LeaderboardEntry struct {
	Player string `json:"player"`
	Value  int    `json:"value"`
	Rank   int    `json:"rank"`
}

// RoomHistory is the archived timeline of one room, newest first.
type RoomHistory struct {
	Room   string           `json:"room"`
	Events []db.EventRecord `json:"events"`
}
