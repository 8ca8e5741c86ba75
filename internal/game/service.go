package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/tambola/internal/tambola"
)

type Settings struct {
	// CallingInterval is used when a room is created without one.
	CallingInterval time.Duration
	DisconnectGrace time.Duration
	CompletedGrace  time.Duration
	// RecordTimeout bounds each write to the Recorder.
	RecordTimeout time.Duration
}

// Service is the command surface of the game engine. Every method is a
// short synchronous state transition on one room.
type Service struct {
	rooms    *Registry
	settings Settings
	notifier Notifier
	recorder Recorder
	logger   *slog.Logger

	// newTickets gives each room its own ticket source.
	newTickets func() TicketSource
	newTicker  TickerFunc
	now        func() time.Time

	records sync.WaitGroup
}

func NewService(settings Settings, notifier Notifier, recorder Recorder, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if settings.CallingInterval <= 0 {
		settings.CallingInterval = 3 * time.Second
	}
	if settings.RecordTimeout <= 0 {
		settings.RecordTimeout = 5 * time.Second
	}

	s := &Service{
		settings:   settings,
		notifier:   notifier,
		recorder:   recorder,
		logger:     logger,
		newTickets: func() TicketSource { return tambola.NewGenerator() },
		newTicker:  realTicker,
		now:        time.Now,
	}
	s.rooms = NewRegistry(s.newRoom)
	return s
}

func (s *Service) newRoom(id string, cfg Config) *Room {
	return newRoom(id, cfg, roomDeps{
		notifier:  s.notifier,
		tickets:   s.newTickets(),
		newTicker: s.newTicker,
		now:       s.now,
		logger:    s.logger,
	})
}

// Rooms exposes the registry, mainly for health and metrics reporting.
func (s *Service) Rooms() *Registry { return s.rooms }

// CreateRoom opens a room with cfg and joins hostName as its host.
func (s *Service) CreateRoom(cfg Config, hostName string) (JoinResult, error) {
	if _, err := cleanName(hostName); err != nil {
		return JoinResult{}, err
	}
	cfg, err := cfg.normalize(s.settings.CallingInterval)
	if err != nil {
		return JoinResult{}, err
	}

	room, err := s.rooms.Create(cfg)
	if err != nil {
		return JoinResult{}, fmt.Errorf("creating room: %w", err)
	}
	res, err := room.join(hostName, JoinOptions{})
	if err != nil {
		s.rooms.Delete(room.id)
		return JoinResult{}, err
	}
	s.logger.Info("room created", "room", room.id, "host", res.PlayerID)
	return res, nil
}

func (s *Service) JoinRoom(roomID, name string, opts JoinOptions) (JoinResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return JoinResult{}, err
	}
	return room.join(name, opts)
}

// RequestTicket returns the player's ticket. The first call generates it;
// later calls return the same ticket.
func (s *Service) RequestTicket(roomID, playerID string) (tambola.Ticket, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return tambola.Ticket{}, err
	}
	return room.ticket(playerID)
}

func (s *Service) StartGame(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.start(playerID)
}

func (s *Service) SetCallingConfig(roomID, playerID string, upd CallingUpdate) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	old, err := room.setCalling(playerID, upd)
	haltAndWait(old)
	return err
}

func (s *Service) PauseCalling(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.pause(playerID)
}

func (s *Service) ResumeCalling(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.resume(playerID)
}

// ManualDraw calls one number. Only valid while automatic calling is off.
func (s *Service) ManualDraw(roomID, playerID string) (int, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return 0, err
	}
	return room.manualDraw(playerID)
}

// StopGame ends the game on the host's request.
func (s *Service) StopGame(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	sched, summary, err := room.stop(playerID)
	if err != nil {
		return err
	}
	haltAndWait(sched)
	s.recordGame(summary)
	return nil
}

// ClaimPrize validates and awards prizeName to the player. struck lists the
// numbers the player asserts as struck; it is ignored for auto-strike
// players, whose claims assert every called number.
func (s *Service) ClaimPrize(roomID, playerID, prizeName string, struck []int) (ClaimResult, error) {
	prize, ok := tambola.ParsePrize(prizeName)
	if !ok {
		return ClaimResult{}, fmt.Errorf("%w: %q", ErrUnknownPrize, prizeName)
	}
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return ClaimResult{}, err
	}
	res, sched, summary, err := room.claim(playerID, prize, struck)
	if err != nil {
		return ClaimResult{}, err
	}
	haltAndWait(sched)
	s.recordGame(summary)
	return res, nil
}

func (s *Service) StrikeNumber(roomID, playerID string, n int) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.strike(playerID, n)
}

// Chat relays a message to the room and hands it to the Recorder.
func (s *Service) Chat(roomID, playerID, text string) (ChatMessage, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return ChatMessage{}, err
	}
	msg, err := room.chat(playerID, text)
	if err != nil {
		return ChatMessage{}, err
	}
	s.record("chat", func(ctx context.Context) error {
		return s.recorder.RecordChat(ctx, msg)
	})
	return msg, nil
}

// LeaveRoom removes the player. The room is deleted once it is empty.
func (s *Service) LeaveRoom(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	empty, err := room.leave(playerID)
	if err != nil {
		return err
	}
	if empty {
		s.rooms.deleteIf(roomID, room, (*Room).empty)
	}
	return nil
}

// Connect records an opened transport stream for the player. Every
// Connect must be paired with a Disconnect when the stream ends; a player
// is online while any of their streams is open.
func (s *Service) Connect(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.connect(playerID)
}

// Disconnect records a closed stream. Once the last one closes the
// disconnect grace period starts.
func (s *Service) Disconnect(roomID, playerID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.disconnect(playerID)
}

func (s *Service) Snapshot(roomID string) (Snapshot, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return Snapshot{}, err
	}
	return room.snapshot()
}

// Reap applies the disconnect and completion grace periods as of now.
func (s *Service) Reap(now time.Time) {
	players, rooms := s.rooms.Reap(now, s.settings.DisconnectGrace, s.settings.CompletedGrace)
	if players > 0 || rooms > 0 {
		s.logger.Info("reaped", "players", players, "rooms", rooms, "live_rooms", s.rooms.Len())
	}
}

// RunReaper calls Reap every interval until ctx is done.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) error {
	ticks, stop := s.newTicker(interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticks:
			s.Reap(now)
		}
	}
}

// Close deletes every room, stopping their timers, and waits for pending
// Recorder writes.
func (s *Service) Close() {
	for _, room := range s.rooms.Rooms() {
		s.rooms.Delete(room.id)
	}
	s.records.Wait()
}

func (s *Service) recordGame(summary *GameSummary) {
	if summary == nil {
		return
	}
	g := *summary
	s.record("game", func(ctx context.Context) error {
		return s.recorder.RecordGame(ctx, g)
	})
}

// record runs a Recorder write off the caller's path with a bounded timeout.
func (s *Service) record(kind string, write func(ctx context.Context) error) {
	s.records.Add(1)
	go func() {
		defer s.records.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.settings.RecordTimeout)
		defer cancel()
		if err := write(ctx); err != nil {
			s.logger.Error("recording failed", "kind", kind, "error", err)
		}
	}()
}
