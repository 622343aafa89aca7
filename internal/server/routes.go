package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, d Deps) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("ClueHunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(d.Logger, d.DB, d.Redis))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handleRegister(d.Store))
		r.Post("/auth/login", handleLogin(d.Store))

		// SSE stream authenticates via query parameter, not the middleware.
		r.Get("/game/stream", handleStream(d.Store, broker))

		// Provider webhook; authenticated by knowledge of the callback URL,
		// not by a player session.
		r.Post("/webhooks/pagoapago", handlePaymentWebhook(d.Logger, d.Store, broker))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(d.Store))

			r.Get("/me", handleMe(d.Store))
			r.Post("/game/start", handleStartGame(d.Store))
			r.Post("/game/requests", handleJoinRequest(d.Store))
			r.Get("/game/events/{eventID}/clues", handleClueView(d.Game))
			r.Get("/game/events/{eventID}/leaderboard", handleLeaderboard(d.Store))
			r.Post("/game/complete", handleCompleteClue(d.Game, d.Store, broker))
			r.Post("/game/skip", handleSkipClue(d.Game, d.Store, broker))
			r.Post("/game/sabotage", handleSabotage(d.Game, broker))
			r.Post("/payments/orders", handleCreateOrder(d.Pay))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware(d.Store), requireAdmin)

			r.Post("/requests/{requestID}/approve", handleApproveRequest(d.Store))
			r.Post("/events", handleCreateEvent(d.Store))
			r.Post("/events/{eventID}/clues", handleCreateClues(d.Store))
		})
	})
}
