package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the attempt, analytics and notification routes behind JWT auth.
func NewRouter(auth *JWTAuth, attempts *AttemptHandler, analytics *AnalyticsHandler, notifications *NotificationsHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/attempts/", attempts.Submit)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/avg-score/", analytics.AvgScore)
			r.Get("/avg-scores-by-time/", analytics.ScoresByTime)
			r.Get("/members-avg-scores-by-time/", analytics.MembersScoresByTime)
			r.Get("/my-last-attempts/", analytics.MyLastAttempts)
			r.Get("/members-last-attempt/", analytics.MembersLastAttempt)
		})

		r.Get("/ws/notifications", notifications.ServeWS)
	})
	return r
}
