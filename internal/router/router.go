package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studymixer-backend/internal/handlers"
	"studymixer-backend/internal/middleware"
)

func New(
	quizHandler *handlers.QuizHandler,
	generatePerMin int,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Generation is a model call per request, keep it rate limited per IP.
	generateLimiter := middleware.NewRateLimiter(generatePerMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/supported-formats", quizHandler.SupportedFormats)
			r.Get("/latest", quizHandler.Latest)
			r.Get("/history", quizHandler.History)
			r.Get("/history/{id}", quizHandler.HistoryItem)

			r.Group(func(r chi.Router) {
				r.Use(generateLimiter.Middleware)
				r.Post("/generate", quizHandler.Generate)
			})
		})
	})

	return r
}
