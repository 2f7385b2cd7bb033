package analytics

type BadgeID string

const (
	BadgeQuickDraw     BadgeID = "quick_draw"
	BadgeSharpshooter  BadgeID = "sharpshooter"
	BadgePerfectionist BadgeID = "perfectionist"
	BadgeVeteran       BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeQuickDraw:     {ID: BadgeQuickDraw, Name: "Quick Draw", Description: "Won the buzzer 10+ times"},
	BadgeSharpshooter:  {ID: BadgeSharpshooter, Name: "Sharpshooter", Description: "80%+ correct over at least 5 answers"},
	BadgePerfectionist: {ID: BadgePerfectionist, Name: "Perfectionist", Description: "3+ correct answers and never wrong"},
	BadgeVeteran:       {ID: BadgeVeteran, Name: "Veteran", Description: "Played in 10+ rooms"},
}

// EvaluateBadges checks which badges a player's lifetime stats earn, in a
// fixed order.
func EvaluateBadges(stats PlayerStats) []Badge {
	var earned []Badge

	if stats.Buzzes >= 10 {
		earned = append(earned, AllBadges[BadgeQuickDraw])
	}

	if stats.Correct+stats.Wrong >= 5 && stats.Accuracy() >= 80 {
		earned = append(earned, AllBadges[BadgeSharpshooter])
	}

	if stats.Correct >= 3 && stats.Wrong == 0 {
		earned = append(earned, AllBadges[BadgePerfectionist])
	}

	if stats.Rooms >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}
