package game

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/tambola/internal/tambola"
)

func newBareRegistry() *Registry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(func(id string, cfg Config) *Room {
		return newRoom(id, cfg, roomDeps{
			notifier:  nopNotifier{},
			tickets:   fixedTickets{},
			newTicker: realTicker,
			now:       time.Now,
			logger:    logger,
		})
	})
}

func TestRandomRoomCode(t *testing.T) {
	for range 100 {
		code, err := randomRoomCode()
		require.NoError(t, err)
		require.Len(t, code, roomCodeLen)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, c), "unexpected %q", c)
		}
	}
}

func TestRegistryRetriesTakenCodes(t *testing.T) {
	reg := newBareRegistry()
	codes := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	reg.newCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	first, err := reg.Create(Config{})
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.ID())

	second, err := reg.Create(Config{})
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.ID())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryGivesUp(t *testing.T) {
	reg := newBareRegistry()
	reg.newCode = func() (string, error) { return "SAME00", nil }

	_, err := reg.Create(Config{})
	require.NoError(t, err)
	_, err = reg.Create(Config{})
	assert.ErrorIs(t, err, ErrNoRoomCode)

	boom := errors.New("entropy exhausted")
	reg.newCode = func() (string, error) { return "", boom }
	_, err = reg.Create(Config{})
	assert.ErrorIs(t, err, boom)
}

func TestRegistryConcurrentCreate(t *testing.T) {
	reg := newBareRegistry()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := reg.Create(Config{})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[room.ID()] = true
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 50)
	assert.Equal(t, 50, reg.Len())
	assert.Len(t, reg.Rooms(), 50)
}

func TestRegistryDeleteIfChecksIdentity(t *testing.T) {
	reg := newBareRegistry()
	room, err := reg.Create(Config{})
	require.NoError(t, err)

	other := newBareRegistry()
	impostor, err := other.Create(Config{})
	require.NoError(t, err)

	always := func(*Room) bool { return true }
	assert.False(t, reg.deleteIf(room.ID(), impostor, always))
	assert.False(t, reg.deleteIf(room.ID(), room, func(*Room) bool { return false }))
	assert.True(t, reg.deleteIf(room.ID(), room, always))

	_, err = reg.Get(room.ID())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPoolDrawsEveryNumberOnce(t *testing.T) {
	p := newPool(rand.New(rand.NewPCG(1, 2)))
	seen := tambola.NewNumberSet()
	for i := range tambola.MaxNumber {
		assert.Equal(t, tambola.MaxNumber-i, p.len())
		n, ok := p.draw()
		require.True(t, ok)
		require.True(t, tambola.ValidNumber(n))
		require.False(t, seen.Has(n), "drew %d twice", n)
		seen.Add(n)
	}
	_, ok := p.draw()
	assert.False(t, ok)
	assert.Zero(t, p.len())
}
