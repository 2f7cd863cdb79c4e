package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pulsefeed/recommendation-service/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/interactions", h.RecordInteraction)
		r.Post("/personalized", h.GetPersonalized)
		r.Get("/similar/{contentID}", h.GetSimilarContent)
		r.Get("/trending", h.GetTrending)
		r.Post("/feedback", h.SubmitFeedback)
		r.Get("/preferences/{userID}", h.GetPreferences)
		r.Delete("/preferences/{userID}/{prefID}", h.DeletePreference)
		r.Get("/analytics/{userID}", h.GetUserAnalytics)
	})
	r.Get("/health", healthCheck)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
