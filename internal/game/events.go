package game

import (
	"time"

	"github.com/playperu/tambola/internal/tambola"
)

type EventType string

const (
	EventRoomState      EventType = "room_state"
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerLeft     EventType = "player_left"
	EventGameStarted    EventType = "game_started"
	EventNumberDrawn    EventType = "number_drawn"
	EventCallingConfig  EventType = "calling_config"
	EventCallingPaused  EventType = "calling_paused"
	EventCallingResumed EventType = "calling_resumed"
	EventPrizeClaimed   EventType = "prize_claimed"
	EventNumberStruck   EventType = "number_struck"
	EventChat           EventType = "chat"
	EventGameOver       EventType = "game_over"
)

// Event is a state change fanned out to every member of a room.
type Event struct {
	Type       EventType     `json:"type"`
	RoomID     string        `json:"roomId"`
	Number     int           `json:"number,omitempty"`
	Called     []int         `json:"called,omitempty"`
	Prize      tambola.Prize `json:"prize,omitempty"`
	PlayerID   string        `json:"playerId,omitempty"`
	PlayerName string        `json:"playerName,omitempty"`
	Score      int           `json:"score,omitempty"`
	Text       string        `json:"text,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Config     *Config       `json:"config,omitempty"`
	Snapshot   *Snapshot     `json:"snapshot,omitempty"`
	At         time.Time     `json:"at"`
}

// Notifier receives room events. Rooms publish while holding their lock so
// that every subscriber sees draws in order; Publish must never block.
type Notifier interface {
	Publish(roomID string, ev Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, Event) {}

// Snapshot is the externally visible state of a room. It carries no
// transport or connection details.
type Snapshot struct {
	RoomID  string       `json:"roomId"`
	State   State        `json:"state"`
	HostID  string       `json:"hostId"`
	Paused  bool         `json:"paused"`
	Calling bool         `json:"calling"`
	Config  Config       `json:"config"`
	Players []PlayerView `json:"players"`
	Called  []int        `json:"called"`
	Prizes  []PrizeView  `json:"prizes"`
}

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
	HasTicket bool   `json:"hasTicket"`
}

type PrizeView struct {
	Name          tambola.Prize `json:"name"`
	Score         int           `json:"score"`
	ClaimedBy     string        `json:"claimedBy,omitempty"`
	ClaimedByName string        `json:"claimedByName,omitempty"`
	ClaimedAt     *time.Time    `json:"claimedAt,omitempty"`
}

type JoinResult struct {
	PlayerID string   `json:"playerId"`
	Host     bool     `json:"host"`
	Snapshot Snapshot `json:"snapshot"`
}

type ClaimResult struct {
	Prize    tambola.Prize `json:"prize"`
	Awarded  int           `json:"awarded"`
	Score    int           `json:"score"`
	GameOver bool          `json:"gameOver"`
}
