package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/tambola/internal/game"
)

const ssePingInterval = 30 * time.Second

// handleEvents streams a room's events as Server-Sent Events. The stream
// opens with a room_state snapshot. Passing ?player= marks that player
// connected for the life of the stream.
func handleEvents(logger *slog.Logger, games *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := roomID(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		if player := r.URL.Query().Get("player"); player != "" {
			if err := games.Connect(id, player); err != nil {
				writeGameError(w, logger, err)
				return
			}
			defer func() { _ = games.Disconnect(id, player) }()
		}

		snap, err := games.Snapshot(id)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		initial, err := json.Marshal(game.Event{Type: game.EventRoomState, RoomID: id, Snapshot: &snap, At: time.Now()})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", game.EventRoomState, initial)
		flusher.Flush()

		ping := time.NewTicker(ssePingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg := <-ch:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
				flusher.Flush()
			case <-ping.C:
				if _, err := games.Snapshot(id); err != nil {
					return
				}
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
