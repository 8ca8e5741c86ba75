package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoPlayer = errors.New("missing player id")

// playerFromRequest reads the caller's player id. It identifies a player
// inside a room and grants nothing beyond that.
func playerFromRequest(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	id, found := strings.CutPrefix(auth, "Bearer ")
	id = strings.TrimSpace(id)
	if !found || id == "" {
		return "", errNoPlayer
	}
	return id, nil
}
