package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/tambola/internal/game"
)

type CreateRoomRequest struct {
	HostName string      `json:"hostName"`
	Config   game.Config `json:"config"`
}

type CreateRoomResponse struct {
	RoomID   string        `json:"roomId"`
	PlayerID string        `json:"playerId"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type JoinRoomRequest struct {
	Name       string `json:"name"`
	AutoStrike bool   `json:"autoStrike"`
}

func handleCreateRoom(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := games.CreateRoom(req.Config, req.HostName)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateRoomResponse{
			RoomID:   res.Snapshot.RoomID,
			PlayerID: res.PlayerID,
			Snapshot: res.Snapshot,
		})
	}
}

func handleGetRoom(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := games.Snapshot(roomID(r))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleJoinRoom(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRoomRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := games.JoinRoom(roomID(r), req.Name, game.JoinOptions{
			AutoStrike: req.AutoStrike,
		})
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func handleLeaveRoom(logger *slog.Logger, games *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := games.LeaveRoom(roomID(r), playerID(r)); err != nil {
			writeGameError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
