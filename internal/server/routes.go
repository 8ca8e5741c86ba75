package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/tambola/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	games := deps.Games

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Tambola API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks, games.Rooms().Len).Routes())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/ws/rooms/{roomID}", handleWS(logger, games, deps.Broker, deps.Chat))

	r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", handleCreateRoom(logger, games))

		r.Route("/{roomID}", func(r chi.Router) {
			r.Get("/", handleGetRoom(logger, games))
			r.Post("/players", handleJoinRoom(logger, games))
			r.Get("/events", handleEvents(logger, games, deps.Broker))
			if deps.History != nil {
				r.Get("/chat", handleListChat(logger, deps.History))
			}

			// Player-scoped commands, identified by the Bearer player id.
			r.Group(func(r chi.Router) {
				r.Use(playerMiddleware)
				r.Delete("/players/me", handleLeaveRoom(logger, games))
				r.Post("/ticket", handleTicket(logger, games))
				r.Post("/start", hostCommand(logger, games, games.StartGame))
				r.Put("/calling", handleSetCalling(logger, games))
				r.Post("/calling/pause", hostCommand(logger, games, games.PauseCalling))
				r.Post("/calling/resume", hostCommand(logger, games, games.ResumeCalling))
				r.Post("/draw", handleDraw(logger, games))
				r.Post("/stop", hostCommand(logger, games, games.StopGame))
				r.Post("/claims", handleClaim(logger, games))
				r.Post("/strikes", handleStrike(logger, games))
			})
		})
	})

	if deps.History != nil {
		r.Route("/api/games", func(r chi.Router) {
			r.Get("/", handleListGames(logger, deps.History))
			r.Get("/{gameID}", handleGetGame(logger, deps.History))
			r.Delete("/{gameID}", handleDeleteGame(logger, deps.History))
		})
	}
}
