package analytics

import (
	"context"
	"fmt"

	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// GetPlayerStats aggregates one player's archived events and evaluates
// their badges.
func (q *Queries) GetPlayerStats(ctx context.Context, player string) (*PlayerStats, error) {
	stats := &PlayerStats{Player: player}
	err := q.DB.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT room_code),
			COUNT(*) FILTER (WHERE event_type = 'buzz_accepted'),
			COUNT(*) FILTER (WHERE event_type = 'verdict' AND data->>'verdict' = 'correct'),
			COUNT(*) FILTER (WHERE event_type = 'verdict' AND data->>'verdict' = 'wrong')
		FROM room_events
		WHERE player = $1
	`, player).Scan(&stats.Rooms, &stats.Buzzes, &stats.Correct, &stats.Wrong)
	if err != nil {
		return nil, fmt.Errorf("getting player stats: %w", err)
	}
	stats.Badges = EvaluateBadges(*stats)
	return stats, nil
}

func leaderboardQuery(category string) (string, error) {
	var value string
	switch category {
	case "buzzes":
		value = `COUNT(*) FILTER (WHERE event_type = 'buzz_accepted')`
	case "correct":
		value = `COUNT(*) FILTER (WHERE event_type = 'verdict' AND data->>'verdict' = 'correct')`
	case "wrong":
		value = `COUNT(*) FILTER (WHERE event_type = 'verdict' AND data->>'verdict' = 'wrong')`
	case "rooms":
		value = `COUNT(DISTINCT room_code)`
	default:
		return "", fmt.Errorf("unknown leaderboard category: %s", category)
	}
	return `
		SELECT player, ` + value + ` AS value
		FROM room_events
		WHERE player <> '' AND player <> $2
		GROUP BY player
		HAVING ` + value + ` > 0
		ORDER BY value DESC, player ASC
		LIMIT $1`, nil
}

func (q *Queries) GetLeaderboard(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	query, err := leaderboardQuery(category)
	if err != nil {
		return nil, err
	}

	rows, err := q.DB.Query(ctx, query, limit, buzz.NoPlayer)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Player, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetRoomHistory(ctx context.Context, room string, limit int) (*RoomHistory, error) {
	evs, err := q.DB.RoomEvents(ctx, room, limit)
	if err != nil {
		return nil, err
	}
	if evs == nil {
		evs = []db.EventRecord{}
	}
	return &RoomHistory{Room: room, Events: evs}, nil
}
