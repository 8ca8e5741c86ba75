package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/tambola"
)

// statusFor maps game errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInvalidState), errors.Is(err, game.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, tambola.ErrInvalidClaim),
		errors.Is(err, game.ErrPrizeNotEnabled),
		errors.Is(err, game.ErrUnknownPrize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeGameError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
