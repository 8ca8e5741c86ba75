package game

import (
	"context"
	"time"

	"github.com/playperu/tambola/internal/tambola"
)

// GameSummary is the record of a finished game handed to the Recorder.
type GameSummary struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"roomId"`
	Reason      string         `json:"reason"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
	Called      []int          `json:"called"`
	Players     []PlayerResult `json:"players"`
	Prizes      []PrizeView    `json:"prizes"`
}

type PlayerResult struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Score  int             `json:"score"`
	Ticket *tambola.Ticket `json:"ticket,omitempty"`
}

type ChatMessage struct {
	RoomID     string    `json:"roomId"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

// Recorder persists finished games and chat lines outside the core.
type Recorder interface {
	RecordGame(ctx context.Context, g GameSummary) error
	RecordChat(ctx context.Context, m ChatMessage) error
}

type nopRecorder struct{}

func (nopRecorder) RecordGame(context.Context, GameSummary) error { return nil }
func (nopRecorder) RecordChat(context.Context, ChatMessage) error { return nil }
