package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyPlayer ctxKey = iota

// playerMiddleware rejects requests without a player id and stores it in
// the request context.
func playerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := playerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authorization: Bearer <playerId> required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyPlayer, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerID(r *http.Request) string {
	return r.Context().Value(ctxKeyPlayer).(string)
}

func roomID(r *http.Request) string {
	return chi.URLParam(r, "roomID")
}
