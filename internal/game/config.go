package game

import (
	"fmt"
	"time"

	"github.com/playperu/tambola/internal/tambola"
)

// Config is the per-room game configuration.
type Config struct {
	CallingIntervalMs int64           `json:"callingIntervalMs"`
	AutoCalling       bool            `json:"autoCalling"`
	EnabledPrizes     []tambola.Prize `json:"enabledPrizes"`
}

func (c Config) interval() time.Duration {
	return time.Duration(c.CallingIntervalMs) * time.Millisecond
}

// normalize fills defaults and resolves prize names against the catalog.
func (c Config) normalize(defaultInterval time.Duration) (Config, error) {
	if c.CallingIntervalMs < 0 {
		return c, fmt.Errorf("%w: callingIntervalMs must be positive", ErrInvalidInput)
	}
	if c.CallingIntervalMs == 0 {
		c.CallingIntervalMs = defaultInterval.Milliseconds()
	}

	if len(c.EnabledPrizes) == 0 {
		c.EnabledPrizes = tambola.AllPrizes()
		return c, nil
	}

	seen := make(map[tambola.Prize]bool, len(c.EnabledPrizes))
	prizes := make([]tambola.Prize, 0, len(c.EnabledPrizes))
	for _, name := range c.EnabledPrizes {
		p, ok := tambola.ParsePrize(string(name))
		if !ok {
			return c, fmt.Errorf("%w: %q", ErrUnknownPrize, name)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		prizes = append(prizes, p)
	}
	c.EnabledPrizes = prizes
	return c, nil
}

func (c Config) enabled(p tambola.Prize) bool {
	for _, e := range c.EnabledPrizes {
		if e == p {
			return true
		}
	}
	return false
}

// CallingUpdate changes the calling settings of a room. Nil fields are left
// as they are.
type CallingUpdate struct {
	IntervalMs  *int64 `json:"intervalMs,omitempty"`
	AutoCalling *bool  `json:"autoCalling,omitempty"`
}

// JoinOptions tune a join request. The host role is not requested: the
// first player in an empty room becomes host.
type JoinOptions struct {
	// AutoStrike makes claims assert every called number instead of a
	// submitted list.
	AutoStrike bool
}
