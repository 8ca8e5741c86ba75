package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/tambola/internal/game"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements HistoryStore. Game summaries are stored as JSONB
// documents next to the columns the listing filters and sorts on.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore expects db to be migrated already.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp. The driver may hand it back
// normalized with trailing fractional zeros trimmed.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func (s *SQLiteStore) RecordGame(ctx context.Context, g game.GameSummary) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", g.ID, err)
	}

	winner, top := leader(g.Players)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, room_id, reason, started_at, completed_at, players, winner, top_score, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		g.ID, g.RoomID, g.Reason, formatTime(g.StartedAt), formatTime(g.CompletedAt),
		len(g.Players), winner, top, string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting game %s: %w", g.ID, err)
	}
	return nil
}

// leader returns the name and score of the highest scorer; ties go to the
// earliest joiner.
func leader(players []game.PlayerResult) (string, int) {
	name, top := "", 0
	for _, p := range players {
		if p.Score > top {
			name, top = p.Name, p.Score
		}
	}
	return name, top
}

func (s *SQLiteStore) RecordChat(ctx context.Context, m game.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (room_id, player_id, player_name, text, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.RoomID, m.PlayerID, m.PlayerName, m.Text, formatTime(m.SentAt),
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// ListGames returns the most recently completed games first.
func (s *SQLiteStore) ListGames(ctx context.Context, limit int) ([]GameListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, reason, started_at, completed_at, players, winner, top_score
		 FROM games ORDER BY completed_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	items := []GameListItem{}
	for rows.Next() {
		var (
			it             GameListItem
			started, ended string
		)
		if err := rows.Scan(&it.ID, &it.RoomID, &it.Reason, &started, &ended, &it.Players, &it.Winner, &it.TopScore); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		if it.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parsing started_at of %s: %w", it.ID, err)
		}
		if it.CompletedAt, err = parseTime(ended); err != nil {
			return nil, fmt.Errorf("parsing completed_at of %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (game.GameSummary, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT json(data) FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameSummary{}, ErrNotFound
	}
	if err != nil {
		return game.GameSummary{}, fmt.Errorf("loading game %s: %w", id, err)
	}

	var g game.GameSummary
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return game.GameSummary{}, fmt.Errorf("decoding game %s: %w", id, err)
	}
	return g, nil
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListChat returns up to limit of the room's latest messages, oldest first.
// Messages are ordered by the time the room accepted them, since inserts
// can land out of order.
func (s *SQLiteStore) ListChat(ctx context.Context, roomID string, limit int) ([]game.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, player_name, text, sent_at FROM (
		     SELECT id, player_id, player_name, text, sent_at FROM chat_messages
		     WHERE room_id = ? ORDER BY sent_at DESC, id DESC LIMIT ?
		 ) ORDER BY sent_at, id`, roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat: %w", err)
	}
	defer rows.Close()

	msgs := []game.ChatMessage{}
	for rows.Next() {
		m := game.ChatMessage{RoomID: roomID}
		var sent string
		if err := rows.Scan(&m.PlayerID, &m.PlayerName, &m.Text, &sent); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		if m.SentAt, err = parseTime(sent); err != nil {
			return nil, fmt.Errorf("parsing sent_at: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Check reports whether the database is reachable.
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
