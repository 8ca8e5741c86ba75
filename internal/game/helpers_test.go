package game

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/playperu/tambola/internal/tambola"
)

// fixedTicket is a valid ticket handed to every player by fixedTickets.
var fixedTicket = tambola.Ticket{
	{1, 0, 21, 0, 41, 0, 61, 0, 81},
	{0, 12, 0, 32, 0, 52, 0, 72, 85},
	{3, 14, 23, 34, 43, 0, 0, 0, 0},
}

type fixedTickets struct{}

func (fixedTickets) Generate() (tambola.Ticket, error) { return fixedTicket, nil }

// manualTicker hands the scheduler a channel the test drives directly.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) ticker(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() {}
}

// tick delivers one tick, failing if no scheduler picks it up.
func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("no scheduler received the tick")
	}
}

// idle reports whether no scheduler is listening on the channel.
func (m *manualTicker) idle() bool {
	select {
	case m.ch <- time.Now():
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(_ string, ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) ofType(typ EventType) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, ev := range n.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type recordingRecorder struct {
	mu    sync.Mutex
	games []GameSummary
	chats []ChatMessage
}

func (r *recordingRecorder) RecordGame(_ context.Context, g GameSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, g)
	return nil
}

func (r *recordingRecorder) RecordChat(_ context.Context, m ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, m)
	return nil
}

func (r *recordingRecorder) gameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

type testEnv struct {
	svc      *Service
	events   *recordingNotifier
	recorder *recordingRecorder
}

func newTestEnv(t *testing.T, opts ...func(*Service)) *testEnv {
	t.Helper()
	env := &testEnv{
		events:   &recordingNotifier{},
		recorder: &recordingRecorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewService(Settings{
		CallingInterval: time.Hour,
		DisconnectGrace: time.Minute,
		CompletedGrace:  10 * time.Minute,
	}, env.events, env.recorder, logger)
	env.svc.newTickets = func() TicketSource { return fixedTickets{} }
	for _, opt := range opts {
		opt(env.svc)
	}
	t.Cleanup(env.svc.Close)
	return env
}

func withTicker(m *manualTicker) func(*Service) {
	return func(s *Service) { s.newTicker = m.ticker }
}

// createRoom opens a room hosted by "host" and returns the room and host ids.
func (e *testEnv) createRoom(t *testing.T, cfg Config) (string, string) {
	t.Helper()
	res, err := e.svc.CreateRoom(cfg, "host")
	require.NoError(t, err)
	require.True(t, res.Host)
	return res.Snapshot.RoomID, res.PlayerID
}

func (e *testEnv) join(t *testing.T, roomID, name string) string {
	t.Helper()
	res, err := e.svc.JoinRoom(roomID, name, JoinOptions{})
	require.NoError(t, err)
	return res.PlayerID
}

func (e *testEnv) called(t *testing.T, roomID string) []int {
	t.Helper()
	snap, err := e.svc.Snapshot(roomID)
	require.NoError(t, err)
	return snap.Called
}

// drawUntil draws manually until every number in want has been called.
func (e *testEnv) drawUntil(t *testing.T, roomID, hostID string, want ...int) {
	t.Helper()
	need := tambola.NewNumberSet(want...)
	have := tambola.NewNumberSet(e.called(t, roomID)...)
	for {
		done := true
		for _, n := range need.Numbers() {
			if !have.Has(n) {
				done = false
				break
			}
		}
		if done {
			return
		}
		n, err := e.svc.ManualDraw(roomID, hostID)
		require.NoError(t, err)
		have.Add(n)
	}
}

func assertUnique(t *testing.T, nums []int) {
	t.Helper()
	seen := tambola.NewNumberSet()
	for _, n := range nums {
		require.True(t, tambola.ValidNumber(n), "number %d out of range", n)
		require.False(t, seen.Has(n), "number %d called twice", n)
		seen.Add(n)
	}
}
