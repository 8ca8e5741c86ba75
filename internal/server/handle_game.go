package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/tambola"
)

type TicketResponse struct {
	Ticket  tambola.Ticket `json:"ticket"`
	Numbers []int          `json:"numbers"`
}

type DrawResponse struct {
	Number int   `json:"number"`
	Called []int `json:"called"`
}

type ClaimRequest struct {
	Prize  string `json:"prize"`
	Struck []int  `json:"struck"`
}

type StrikeRequest struct {
	Number int `json:"number"`
}

func handleTicket(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := games.RequestTicket(roomID(r), playerID(r))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, TicketResponse{Ticket: t, Numbers: t.Numbers()})
	}
}

// hostCommand wraps a host-only command that takes no body and answers
// with the resulting room snapshot.
func hostCommand(logger *slog.Logger, games *game.Service, cmd func(roomID, playerID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := roomID(r)
		if err := cmd(id, playerID(r)); err != nil {
			writeGameError(w, logger, err)
			return
		}
		respondSnapshot(w, logger, games, id)
	}
}

func respondSnapshot(w http.ResponseWriter, logger *slog.Logger, games *game.Service, id string) {
	snap, err := games.Snapshot(id)
	if err != nil {
		writeGameError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func handleSetCalling(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req game.CallingUpdate
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id := roomID(r)
		if err := games.SetCallingConfig(id, playerID(r), req); err != nil {
			writeGameError(w, logger, err)
			return
		}
		respondSnapshot(w, logger, games, id)
	}
}

func handleDraw(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := roomID(r)
		n, err := games.ManualDraw(id, playerID(r))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		resp := DrawResponse{Number: n}
		if snap, err := games.Snapshot(id); err == nil {
			resp.Called = snap.Called
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleClaim(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := games.ClaimPrize(roomID(r), playerID(r), req.Prize, req.Struck)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleStrike(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StrikeRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := games.StrikeNumber(roomID(r), playerID(r), req.Number); err != nil {
			writeGameError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
