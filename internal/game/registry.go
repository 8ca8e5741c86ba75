package game

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/playperu/tambola/internal/metrics"
)

const (
	roomCodeLen      = 6
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O or 1/I
	maxCodeAttempts  = 32
)

// Registry owns the live rooms keyed by room code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	newCode func() (string, error)
	newRoom func(id string, cfg Config) *Room
}

func NewRegistry(newRoom func(id string, cfg Config) *Room) *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		newCode: randomRoomCode,
		newRoom: newRoom,
	}
}

func randomRoomCode() (string, error) {
	buf := make([]byte, roomCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf), nil
}

// Create allocates a fresh code and registers a new room under it. The code
// is checked and claimed under the write lock, so concurrent creates never
// share a code.
func (r *Registry) Create(cfg Config) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for range maxCodeAttempts {
		code, err := r.newCode()
		if err != nil {
			return nil, err
		}
		if _, taken := r.rooms[code]; taken {
			continue
		}
		room := r.newRoom(code, cfg)
		r.rooms[code] = room
		metrics.RoomOpened()
		return room, nil
	}
	return nil, ErrNoRoomCode
}

func (r *Registry) Get(id string) (*Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Delete removes the room and returns once its draw timer has stopped.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.release(room)
	return true
}

// deleteIf removes room only if it is still registered under id and cond
// holds while the registry lock is held.
func (r *Registry) deleteIf(id string, room *Room, cond func(*Room) bool) bool {
	r.mu.Lock()
	current, ok := r.rooms[id]
	ok = ok && current == room && cond(room)
	if ok {
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.release(room)
	return true
}

func (r *Registry) release(room *Room) {
	haltAndWait(room.shutdown())
	metrics.RoomClosed()
	room.logger.Info("room deleted")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Rooms returns the live rooms at the time of the call.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// Reap drops long-disconnected players and deletes rooms that are empty or
// have been completed for longer than completedGrace. It returns the number
// of players and rooms removed.
func (r *Registry) Reap(now time.Time, disconnectGrace, completedGrace time.Duration) (players, rooms int) {
	for _, room := range r.Rooms() {
		removed, expired := room.reap(now, disconnectGrace, completedGrace)
		players += removed
		if !expired {
			continue
		}
		stillExpired := func(rm *Room) bool {
			_, exp := rm.reap(now, disconnectGrace, completedGrace)
			return exp
		}
		if r.deleteIf(room.id, room, stillExpired) {
			rooms++
		}
	}
	return players, rooms
}
