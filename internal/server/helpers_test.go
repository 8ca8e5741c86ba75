package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/playperu/tambola/internal/database"
	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/handler/health"
	"github.com/playperu/tambola/internal/migrations"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

type testApp struct {
	handler http.Handler
	games   *game.Service
	broker  *Broker
	store   *SQLiteStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := discardLogger()
	store := newTestStore(t)
	broker := NewBroker(logger)

	games := game.NewService(game.Settings{
		CallingInterval: time.Hour,
		DisconnectGrace: time.Minute,
		CompletedGrace:  time.Minute,
	}, broker, store, logger)
	t.Cleanup(games.Close)

	srv := New(":0", logger, Deps{
		Games:   games,
		Broker:  broker,
		History: store,
		Checks:  map[string]health.Checker{"sqlite": store},
		Chat:    ChatLimit{Rate: rate.Limit(1), Burst: 2},
	})
	return &testApp{handler: srv.Handler(), games: games, broker: broker, store: store}
}

// do sends a JSON request. player, when set, is sent as the Bearer id.
func (a *testApp) do(t *testing.T, method, path, player string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("Authorization", "Bearer "+player)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

// createRoom opens a manual-calling room and returns its id and the host id.
func (a *testApp) createRoom(t *testing.T) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/rooms", "", CreateRoomRequest{HostName: "host"})
	expectStatus(t, rec, http.StatusCreated)
	res := decode[CreateRoomResponse](t, rec)
	return res.RoomID, res.PlayerID
}
