package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnauthorized    = errors.New("only the host may do that")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyClaimed  = errors.New("prize already claimed")
	ErrPrizeNotEnabled = errors.New("prize not enabled in this room")
	ErrUnknownPrize    = errors.New("unknown prize")
	ErrNoRoomCode      = errors.New("no free room code")

	ErrRoomNotFound  = fmt.Errorf("room %w", ErrNotFound)
	ErrInvalidPlayer = fmt.Errorf("player %w", ErrNotFound)

	ErrGameAlreadyStarted = fmt.Errorf("game already started: %w", ErrInvalidState)
	ErrRoomClosed         = fmt.Errorf("room closed: %w", ErrInvalidState)
	ErrNotStarted         = fmt.Errorf("game not started: %w", ErrInvalidState)
	ErrAutoCalling        = fmt.Errorf("automatic calling is on: %w", ErrInvalidState)
	ErrCallingStopped     = fmt.Errorf("automatic calling is not running: %w", ErrInvalidState)
	ErrAllCalled          = fmt.Errorf("all numbers called: %w", ErrInvalidState)
)
