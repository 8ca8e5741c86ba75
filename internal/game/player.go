package game

import (
	"time"

	"github.com/playperu/tambola/internal/tambola"
)

type Player struct {
	ID             string
	Name           string
	Ticket         *tambola.Ticket
	Score          int
	AutoStrike     bool
	Connected      bool
	JoinedAt       time.Time
	DisconnectedAt time.Time

	// streams counts the player's open transport streams; Connected is
	// true while it is above zero.
	streams int
}

// Claim is a write-once scorecard entry.
type Claim struct {
	Prize      tambola.Prize
	Score      int
	PlayerID   string
	PlayerName string
	ClaimedAt  time.Time
}
