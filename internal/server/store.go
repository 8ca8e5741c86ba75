package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/tambola/internal/game"
)

var ErrNotFound = errors.New("not found")

// GameListItem is one row of the archived games listing.
type GameListItem struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	Reason      string    `json:"reason"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Players     int       `json:"players"`
	Winner      string    `json:"winner,omitempty"`
	TopScore    int       `json:"topScore"`
}

// HistoryStore serves archived games and chat. Implementations also
// receive new records through game.Recorder.
type HistoryStore interface {
	game.Recorder

	ListGames(ctx context.Context, limit int) ([]GameListItem, error)
	GetGame(ctx context.Context, id string) (game.GameSummary, error)
	DeleteGame(ctx context.Context, id string) error
	ListChat(ctx context.Context, roomID string, limit int) ([]game.ChatMessage, error)
}
