package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizbuzzer/internal/events"
)

// EventRecord is one archived row of room_events.
type EventRecord struct {
	ID         int64           `json:"id"`
	Room       string          `json:"room"`
	Type       string          `json:"type"`
	Player     string          `json:"player,omitempty"`
	Delta      int             `json:"delta"`
	Data       json.RawMessage `json:"data,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// BatchRecordEvents archives a batch of room events in one transaction.
func (d *DB) BatchRecordEvents(ctx context.Context, batch []events.Event) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO room_events (room_code, event_type, player, delta, data, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range batch {
		data, err := encodeData(ev.Data)
		if err != nil {
			return fmt.Errorf("encoding %s event data: %w", ev.Type, err)
		}
		if _, err := stmt.ExecContext(ctx, ev.Room, string(ev.Type), ev.Player, ev.Delta, data, ev.At); err != nil {
			return fmt.Errorf("recording event in batch: %w", err)
		}
	}

	return tx.Commit()
}

// RoomEvents returns the newest events of one room, newest first.
func (d *DB) RoomEvents(ctx context.Context, room string, limit int) ([]EventRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, room_code, event_type, player, delta, COALESCE(data, 'null'::jsonb), occurred_at
		FROM room_events
		WHERE room_code = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`, room, limit)
	if err != nil {
		return nil, fmt.Errorf("querying room events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var r EventRecord
		var data []byte
		if err := rows.Scan(&r.ID, &r.Room, &r.Type, &r.Player, &r.Delta, &data, &r.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning room event: %w", err)
		}
		r.Data = data
		out = append(out, r)
	}
	return out, rows.Err()
}

func encodeData(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
