package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/tambola"
)

func summary(id string, completed time.Time, players ...game.PlayerResult) game.GameSummary {
	return game.GameSummary{
		ID:          id,
		RoomID:      "ROOM" + id,
		Reason:      "all prizes claimed",
		StartedAt:   completed.Add(-10 * time.Minute),
		CompletedAt: completed,
		Called:      []int{5, 17, 90},
		Players:     players,
	}
}

func TestSQLiteStoreGames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := summary("g1", base,
		game.PlayerResult{ID: "p1", Name: "asha", Score: 100},
		game.PlayerResult{ID: "p2", Name: "ravi", Score: 300},
	)
	newer := summary("g2", base.Add(time.Hour),
		game.PlayerResult{ID: "p3", Name: "meera", Score: 0},
	)
	for _, g := range []game.GameSummary{older, newer} {
		if err := store.RecordGame(ctx, g); err != nil {
			t.Fatalf("record %s: %v", g.ID, err)
		}
	}

	items, err := store.ListGames(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("listed %d games, want 2", len(items))
	}
	if items[0].ID != "g2" || items[1].ID != "g1" {
		t.Errorf("order = %s, %s; want newest first", items[0].ID, items[1].ID)
	}
	if items[1].Winner != "ravi" || items[1].TopScore != 300 || items[1].Players != 2 {
		t.Errorf("g1 row = %+v", items[1])
	}
	if items[0].Winner != "" {
		t.Errorf("scoreless game has winner %q", items[0].Winner)
	}
	if !items[1].CompletedAt.Equal(base) {
		t.Errorf("completed_at = %v, want %v", items[1].CompletedAt, base)
	}

	limited, err := store.ListGames(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d rows", len(limited))
	}

	got, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RoomID != "ROOMg1" || len(got.Players) != 2 || len(got.Called) != 3 {
		t.Errorf("round trip = %+v", got)
	}

	if err := store.DeleteGame(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetGame(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted = %v, want ErrNotFound", err)
	}
	if err := store.DeleteGame(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete twice = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreKeepsTickets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ticket := tambola.Ticket{
		{1, 0, 21, 0, 41, 0, 61, 0, 81},
		{0, 12, 0, 32, 0, 52, 0, 72, 85},
		{3, 14, 23, 34, 43, 0, 0, 0, 0},
	}
	g := summary("g1", time.Now(), game.PlayerResult{ID: "p1", Name: "asha", Ticket: &ticket})
	if err := store.RecordGame(ctx, g); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Players[0].Ticket == nil || *got.Players[0].Ticket != ticket {
		t.Errorf("ticket = %v, want %v", got.Players[0].Ticket, ticket)
	}
}

func TestSQLiteStoreChat(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"one", "two", "three", "four"} {
		err := store.RecordChat(ctx, game.ChatMessage{
			RoomID:     "ROOM01",
			PlayerID:   "p1",
			PlayerName: "asha",
			Text:       text,
			SentAt:     base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("record chat: %v", err)
		}
	}
	if err := store.RecordChat(ctx, game.ChatMessage{RoomID: "OTHER1", Text: "elsewhere", SentAt: base}); err != nil {
		t.Fatalf("record chat: %v", err)
	}

	msgs, err := store.ListChat(ctx, "ROOM01", 3)
	if err != nil {
		t.Fatalf("list chat: %v", err)
	}
	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	if want := []string{"two", "three", "four"}; len(texts) != 3 || texts[0] != want[0] || texts[2] != want[2] {
		t.Errorf("texts = %v, want %v", texts, want)
	}
	if !msgs[2].SentAt.Equal(base.Add(3 * time.Second)) {
		t.Errorf("sent_at = %v", msgs[2].SentAt)
	}

	if err := store.Check(ctx); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestSQLiteStoreTimestampPrecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stamps := []time.Time{
		time.Date(2026, 10, 19, 9, 30, 12, 0, time.UTC),
		time.Date(2026, 10, 19, 9, 30, 12, 120_000_000, time.UTC),
		time.Date(2026, 10, 19, 9, 30, 12, 345_678_900, time.UTC),
	}
	for i, ts := range stamps {
		id := string(rune('a' + i))
		if err := store.RecordGame(ctx, summary(id, ts)); err != nil {
			t.Fatalf("record game: %v", err)
		}
		err := store.RecordChat(ctx, game.ChatMessage{RoomID: "ROOM01", PlayerID: "p1", PlayerName: "asha", Text: id, SentAt: ts})
		if err != nil {
			t.Fatalf("record chat: %v", err)
		}
	}

	items, err := store.ListGames(ctx, 10)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(items) != len(stamps) {
		t.Fatalf("listed %d games, want %d", len(items), len(stamps))
	}
	for i, it := range items {
		want := stamps[len(stamps)-1-i]
		if !it.CompletedAt.Equal(want) {
			t.Errorf("game %s completed_at = %v, want %v", it.ID, it.CompletedAt, want)
		}
	}

	msgs, err := store.ListChat(ctx, "ROOM01", 10)
	if err != nil {
		t.Fatalf("list chat: %v", err)
	}
	if len(msgs) != len(stamps) {
		t.Fatalf("listed %d messages, want %d", len(msgs), len(stamps))
	}
	for i, m := range msgs {
		if !m.SentAt.Equal(stamps[i]) {
			t.Errorf("message %d sent_at = %v, want %v", i, m.SentAt, stamps[i])
		}
	}
}

func TestSQLiteStoreChatOrderedBySendTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Inserted in reverse, as concurrent writers may do.
	for i, text := range []string{"third", "second", "first"} {
		err := store.RecordChat(ctx, game.ChatMessage{
			RoomID: "ROOM01",
			Text:   text,
			SentAt: base.Add(time.Duration(2-i) * time.Microsecond),
		})
		if err != nil {
			t.Fatalf("record chat: %v", err)
		}
	}

	msgs, err := store.ListChat(ctx, "ROOM01", 2)
	if err != nil {
		t.Fatalf("list chat: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "second" || msgs[1].Text != "third" {
		t.Errorf("messages = %+v, want second then third", msgs)
	}
}
