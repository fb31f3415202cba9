package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reelrank/recommendation-engine/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/users/{userID}/recommendations", h.GetRecommendations)
	r.Get("/users/{userID}/predictions/{movieID}", h.GetPrediction)
	r.Post("/users/{userID}/ratings", h.AddRating)
	r.Get("/movies/search", h.SearchMovies)
	r.Get("/movies/{movieID}", h.GetMovie)
	r.Get("/genres", h.GetGenres)
	r.Get("/genres/{genre}/movies", h.GetMoviesByGenre)
	r.Get("/health", healthCheck)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
