package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/playperu/tambola/internal/metrics"
	"github.com/playperu/tambola/internal/tambola"
)

type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Reasons a game reaches StateCompleted.
const (
	EndAllPrizesClaimed = "all_prizes_claimed"
	EndHostStopped      = "host_stopped"
)

const (
	drawAuto   = "auto"
	drawManual = "manual"

	maxNameLen = 40
	maxChatLen = 500
)

// TicketSource generates tickets for players.
type TicketSource interface {
	Generate() (tambola.Ticket, error)
}

// Room is one game session. Every exported operation on a room goes
// through the Service; the room's mutex serializes them.
type Room struct {
	mu sync.Mutex

	id      string
	state   State
	hostID  string
	cfg     Config
	players map[string]*Player
	order   []string // player ids in join order

	called    []int
	calledSet tambola.NumberSet
	pool      *pool
	prizes    map[tambola.Prize]*Claim

	sched   *scheduler
	paused  bool
	deleted bool

	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time

	notifier  Notifier
	tickets   TicketSource
	newTicker TickerFunc
	now       func() time.Time
	logger    *slog.Logger
}

func (r *Room) ID() string { return r.id }

// live reports ErrRoomNotFound for a room already removed from the registry.
func (r *Room) live() error {
	if r.deleted {
		return ErrRoomNotFound
	}
	return nil
}

func (r *Room) player(id string) (*Player, error) {
	if err := r.live(); err != nil {
		return nil, err
	}
	p, ok := r.players[id]
	if !ok {
		return nil, ErrInvalidPlayer
	}
	return p, nil
}

func (r *Room) host(id string) (*Player, error) {
	p, err := r.player(id)
	if err != nil {
		return nil, err
	}
	if r.hostID != id {
		return nil, ErrUnauthorized
	}
	return p, nil
}

func (r *Room) requireInProgress() error {
	switch r.state {
	case StateWaiting:
		return ErrNotStarted
	case StateCompleted:
		return ErrRoomClosed
	}
	return nil
}

func (r *Room) publish(ev Event) {
	ev.RoomID = r.id
	ev.At = r.now()
	r.notifier.Publish(r.id, ev)
}

func (r *Room) publishState() {
	snap := r.snapshotLocked()
	r.publish(Event{Type: EventRoomState, Snapshot: &snap})
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("%w: player name longer than %d characters", ErrInvalidInput, maxNameLen)
	}
	return name, nil
}

func (r *Room) join(name string, opts JoinOptions) (JoinResult, error) {
	name, err := cleanName(name)
	if err != nil {
		return JoinResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.live(); err != nil {
		return JoinResult{}, err
	}
	switch r.state {
	case StateInProgress:
		return JoinResult{}, ErrGameAlreadyStarted
	case StateCompleted:
		return JoinResult{}, ErrRoomClosed
	}

	now := r.now()
	p := &Player{
		ID:             uuid.NewString(),
		Name:           name,
		AutoStrike:     opts.AutoStrike,
		JoinedAt:       now,
		DisconnectedAt: now,
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	if r.hostID == "" {
		r.hostID = p.ID
	}

	r.logger.Info("player joined", "player", p.ID, "name", p.Name, "host", r.hostID == p.ID)

	snap := r.snapshotLocked()
	r.publish(Event{Type: EventPlayerJoined, PlayerID: p.ID, PlayerName: p.Name, Snapshot: &snap})

	return JoinResult{PlayerID: p.ID, Host: r.hostID == p.ID, Snapshot: snap}, nil
}

// ticket returns the player's ticket, generating it on first request.
func (r *Room) ticket(playerID string) (tambola.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return tambola.Ticket{}, err
	}
	if p.Ticket != nil {
		return *p.Ticket, nil
	}

	t, err := r.tickets.Generate()
	if err != nil {
		r.logger.Error("ticket generation failed", "player", playerID, "error", err)
		return tambola.Ticket{}, err
	}
	p.Ticket = &t
	r.publishState()
	return t, nil
}

func (r *Room) start(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return err
	}
	switch r.state {
	case StateInProgress:
		return ErrGameAlreadyStarted
	case StateCompleted:
		return ErrRoomClosed
	}

	r.state = StateInProgress
	r.startedAt = r.now()
	if r.cfg.AutoCalling {
		r.startSchedulerLocked()
	}

	r.logger.Info("game started", "players", len(r.players), "auto_calling", r.cfg.AutoCalling)
	snap := r.snapshotLocked()
	r.publish(Event{Type: EventGameStarted, Snapshot: &snap})
	return nil
}

func (r *Room) startSchedulerLocked() {
	if r.pool.len() == 0 {
		return
	}
	r.paused = false
	r.sched = startScheduler(r.cfg.interval(), r.newTicker, r.autoDraw)
}

// detachSchedulerLocked cancels and detaches the scheduler. The caller
// waits on the returned handle after releasing the lock.
func (r *Room) detachSchedulerLocked() *scheduler {
	s := r.sched
	r.sched = nil
	r.paused = false
	if s != nil {
		s.halt()
	}
	return s
}

func (r *Room) setCalling(playerID string, upd CallingUpdate) (*scheduler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return nil, err
	}
	if r.state == StateCompleted {
		return nil, ErrRoomClosed
	}
	if upd.IntervalMs != nil && *upd.IntervalMs <= 0 {
		return nil, fmt.Errorf("%w: intervalMs must be positive", ErrInvalidInput)
	}

	intervalChanged := upd.IntervalMs != nil && *upd.IntervalMs != r.cfg.CallingIntervalMs
	if upd.IntervalMs != nil {
		r.cfg.CallingIntervalMs = *upd.IntervalMs
	}
	if upd.AutoCalling != nil {
		r.cfg.AutoCalling = *upd.AutoCalling
	}

	var old *scheduler
	if r.state == StateInProgress {
		switch {
		case !r.cfg.AutoCalling:
			old = r.detachSchedulerLocked()
		case r.sched == nil:
			r.startSchedulerLocked()
		case intervalChanged:
			paused := r.paused
			old = r.detachSchedulerLocked()
			r.startSchedulerLocked()
			r.paused = paused
		}
	}

	cfg := r.cfg
	cfg.EnabledPrizes = slices.Clone(cfg.EnabledPrizes)
	r.publish(Event{Type: EventCallingConfig, Config: &cfg})
	return old, nil
}

func (r *Room) pause(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return err
	}
	if r.sched == nil {
		return ErrCallingStopped
	}
	if r.paused {
		return nil
	}
	r.paused = true
	r.publish(Event{Type: EventCallingPaused})
	return nil
}

func (r *Room) resume(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return err
	}
	if r.sched == nil {
		return ErrCallingStopped
	}
	if !r.paused {
		return nil
	}
	r.paused = false
	r.publish(Event{Type: EventCallingResumed})
	return nil
}

// autoDraw runs on the scheduler goroutine for every tick.
func (r *Room) autoDraw(s *scheduler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sched != s || r.deleted || r.state != StateInProgress {
		return false
	}
	if r.paused {
		return true
	}
	r.drawLocked(drawAuto)
	if r.pool.len() == 0 {
		r.sched = nil
		s.halt()
		r.logger.Info("all numbers called, calling halted")
		return false
	}
	return true
}

func (r *Room) manualDraw(playerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return 0, err
	}
	if err := r.requireInProgress(); err != nil {
		return 0, err
	}
	if r.cfg.AutoCalling {
		return 0, ErrAutoCalling
	}
	n, ok := r.drawLocked(drawManual)
	if !ok {
		return 0, ErrAllCalled
	}
	return n, nil
}

func (r *Room) drawLocked(mode string) (int, bool) {
	n, ok := r.pool.draw()
	if !ok {
		return 0, false
	}
	r.called = append(r.called, n)
	r.calledSet.Add(n)
	metrics.RecordDraw(mode)

	r.logger.Debug("number drawn", "number", n, "count", len(r.called), "mode", mode)
	r.publish(Event{Type: EventNumberDrawn, Number: n, Called: slices.Clone(r.called)})
	return n, true
}

func (r *Room) stop(playerID string) (*scheduler, *GameSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.host(playerID); err != nil {
		return nil, nil, err
	}
	if r.state == StateCompleted {
		return nil, nil, ErrRoomClosed
	}
	s, summary := r.completeLocked(EndHostStopped)
	return s, summary, nil
}

// completeLocked moves the room to StateCompleted. A summary is returned
// only for games that were actually started.
func (r *Room) completeLocked(reason string) (*scheduler, *GameSummary) {
	wasStarted := r.state == StateInProgress
	r.state = StateCompleted
	r.completedAt = r.now()
	s := r.detachSchedulerLocked()
	metrics.RecordGameCompleted(reason)

	r.logger.Info("game over", "reason", reason, "called", len(r.called))
	snap := r.snapshotLocked()
	r.publish(Event{Type: EventGameOver, Reason: reason, Snapshot: &snap})

	if !wasStarted {
		return s, nil
	}
	summary := r.summaryLocked(reason, snap)
	return s, &summary
}

func (r *Room) claim(playerID string, prize tambola.Prize, struck []int) (ClaimResult, *scheduler, *GameSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return ClaimResult{}, nil, nil, err
	}
	// A claimed prize stays claimed, including after the game is over.
	if _, taken := r.prizes[prize]; taken {
		metrics.RecordClaim(string(prize), "already_claimed")
		return ClaimResult{}, nil, nil, ErrAlreadyClaimed
	}
	if err := r.requireInProgress(); err != nil {
		return ClaimResult{}, nil, nil, err
	}
	if !r.cfg.enabled(prize) {
		metrics.RecordClaim(string(prize), "not_enabled")
		return ClaimResult{}, nil, nil, ErrPrizeNotEnabled
	}
	if p.Ticket == nil {
		metrics.RecordClaim(string(prize), "rejected")
		return ClaimResult{}, nil, nil, &tambola.ClaimError{Prize: prize, Reason: "player has no ticket"}
	}

	// calledSet is read under the room lock, so no draw can land between
	// choosing the asserted numbers and validating them.
	asserted := struck
	if p.AutoStrike {
		asserted = r.calledSet.Numbers()
	}
	if err := tambola.Validate(*p.Ticket, r.calledSet, prize, asserted); err != nil {
		metrics.RecordClaim(string(prize), "rejected")
		r.logger.Info("claim rejected", "player", p.ID, "prize", prize, "error", err)
		return ClaimResult{}, nil, nil, err
	}

	def, _ := tambola.Lookup(prize)
	r.prizes[prize] = &Claim{
		Prize:      prize,
		Score:      def.Score,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		ClaimedAt:  r.now(),
	}
	p.Score += def.Score
	metrics.RecordClaim(string(prize), "won")

	r.logger.Info("prize claimed", "player", p.ID, "prize", prize, "score", p.Score)
	snap := r.snapshotLocked()
	r.publish(Event{
		Type:       EventPrizeClaimed,
		Prize:      prize,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Score:      def.Score,
		Snapshot:   &snap,
	})

	res := ClaimResult{Prize: prize, Awarded: def.Score, Score: p.Score}
	if !r.allClaimedLocked() {
		return res, nil, nil, nil
	}
	res.GameOver = true
	s, summary := r.completeLocked(EndAllPrizesClaimed)
	return res, s, summary, nil
}

func (r *Room) allClaimedLocked() bool {
	for _, p := range r.cfg.EnabledPrizes {
		if _, ok := r.prizes[p]; !ok {
			return false
		}
	}
	return true
}

// strike relays a player's mark on a called number. The mark itself stays
// with the client; the room only checks it is plausible.
func (r *Room) strike(playerID string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return err
	}
	if err := r.requireInProgress(); err != nil {
		return err
	}
	if p.Ticket == nil || !p.Ticket.Has(n) {
		return fmt.Errorf("%w: number %d is not on the ticket", ErrInvalidInput, n)
	}
	if !r.calledSet.Has(n) {
		return fmt.Errorf("%w: number %d has not been called", ErrInvalidInput, n)
	}
	r.publish(Event{Type: EventNumberStruck, Number: n, PlayerID: p.ID, PlayerName: p.Name})
	return nil
}

func (r *Room) chat(playerID, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxChatLen {
		return ChatMessage{}, fmt.Errorf("%w: message longer than %d characters", ErrInvalidInput, maxChatLen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return ChatMessage{}, err
	}
	msg := ChatMessage{
		RoomID:     r.id,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Text:       text,
		SentAt:     r.now(),
	}
	r.publish(Event{Type: EventChat, PlayerID: p.ID, PlayerName: p.Name, Text: text})
	return msg, nil
}

// leave removes the player and reports whether the room is now empty.
func (r *Room) leave(playerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return false, err
	}
	r.removePlayerLocked(p)
	return len(r.players) == 0, nil
}

func (r *Room) removePlayerLocked(p *Player) {
	delete(r.players, p.ID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == p.ID })
	if r.hostID == p.ID {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
			r.logger.Info("host promoted", "player", r.hostID)
		}
	}

	r.logger.Info("player left", "player", p.ID, "remaining", len(r.players))
	snap := r.snapshotLocked()
	r.publish(Event{Type: EventPlayerLeft, PlayerID: p.ID, PlayerName: p.Name, Snapshot: &snap})
}

// connect registers an open stream for the player.
func (r *Room) connect(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return err
	}
	p.streams++
	if p.streams == 1 {
		p.Connected = true
		r.publishState()
	}
	return nil
}

// disconnect closes one of the player's streams. The player goes offline
// when the last one closes.
func (r *Room) disconnect(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.player(playerID)
	if err != nil {
		return err
	}
	if p.streams == 0 {
		return nil
	}
	p.streams--
	if p.streams == 0 {
		p.Connected = false
		p.DisconnectedAt = r.now()
		r.publishState()
	}
	return nil
}

func (r *Room) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// reap drops players disconnected for longer than disconnectGrace and
// reports whether the whole room has expired.
func (r *Room) reap(now time.Time, disconnectGrace, completedGrace time.Duration) (removed int, expired bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleted {
		return 0, false
	}
	for _, id := range slices.Clone(r.order) {
		p := r.players[id]
		if !p.Connected && now.Sub(p.DisconnectedAt) > disconnectGrace {
			r.removePlayerLocked(p)
			removed++
		}
	}
	expired = len(r.players) == 0 ||
		(r.state == StateCompleted && now.Sub(r.completedAt) > completedGrace)
	return removed, expired
}

// shutdown marks the room deleted and detaches its scheduler.
func (r *Room) shutdown() *scheduler {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = true
	return r.detachSchedulerLocked()
}

func (r *Room) snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.live(); err != nil {
		return Snapshot{}, err
	}
	return r.snapshotLocked(), nil
}

func (r *Room) snapshotLocked() Snapshot {
	cfg := r.cfg
	cfg.EnabledPrizes = slices.Clone(cfg.EnabledPrizes)

	snap := Snapshot{
		RoomID:  r.id,
		State:   r.state,
		HostID:  r.hostID,
		Paused:  r.paused,
		Calling: r.sched != nil,
		Config:  cfg,
		Players: make([]PlayerView, 0, len(r.order)),
		Called:  slices.Clone(r.called),
		Prizes:  r.prizeViewsLocked(),
	}
	if snap.Called == nil {
		snap.Called = []int{}
	}
	for _, id := range r.order {
		p := r.players[id]
		snap.Players = append(snap.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Host:      p.ID == r.hostID,
			Connected: p.Connected,
			HasTicket: p.Ticket != nil,
		})
	}
	return snap
}

func (r *Room) prizeViewsLocked() []PrizeView {
	views := make([]PrizeView, 0, len(r.cfg.EnabledPrizes))
	for _, name := range r.cfg.EnabledPrizes {
		def, _ := tambola.Lookup(name)
		v := PrizeView{Name: name, Score: def.Score}
		if c, ok := r.prizes[name]; ok {
			at := c.ClaimedAt
			v.ClaimedBy = c.PlayerID
			v.ClaimedByName = c.PlayerName
			v.ClaimedAt = &at
		}
		views = append(views, v)
	}
	return views
}

func (r *Room) summaryLocked(reason string, snap Snapshot) GameSummary {
	players := make([]PlayerResult, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		res := PlayerResult{ID: p.ID, Name: p.Name, Score: p.Score}
		if p.Ticket != nil {
			t := *p.Ticket
			res.Ticket = &t
		}
		players = append(players, res)
	}
	return GameSummary{
		ID:          uuid.NewString(),
		RoomID:      r.id,
		Reason:      reason,
		StartedAt:   r.startedAt,
		CompletedAt: r.completedAt,
		Called:      snap.Called,
		Players:     players,
		Prizes:      snap.Prizes,
	}
}

func newRoom(id string, cfg Config, deps roomDeps) *Room {
	return &Room{
		id:        id,
		state:     StateWaiting,
		cfg:       cfg,
		players:   make(map[string]*Player),
		pool:      newPool(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))),
		prizes:    make(map[tambola.Prize]*Claim),
		createdAt: deps.now(),
		notifier:  deps.notifier,
		tickets:   deps.tickets,
		newTicker: deps.newTicker,
		now:       deps.now,
		logger:    deps.logger.With("room", id),
	}
}

type roomDeps struct {
	notifier  Notifier
	tickets   TicketSource
	newTicker TickerFunc
	now       func() time.Time
	logger    *slog.Logger
}
