package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func listLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return min(n, maxListLimit), true
}

func handleListGames(logger *slog.Logger, history HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := listLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		games, err := history.ListGames(r.Context(), limit)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleGetGame(logger *slog.Logger, history HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := history.GetGame(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func handleDeleteGame(logger *slog.Logger, history HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := history.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
			writeGameError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListChat(logger *slog.Logger, history HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := listLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		msgs, err := history.ListChat(r.Context(), roomID(r), limit)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
