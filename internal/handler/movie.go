package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GET /movies/search?q=
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Missing q parameter")
		return
	}

	movies, err := h.service.SearchMovies(r.Context(), query)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoviesResponse{Movies: movies, Total: len(movies)})
}

// GET /movies/{movieID}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid movie_id parameter")
		return
	}

	movie, err := h.service.MovieByID(r.Context(), movieID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// GET /genres
func (h *Handler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenresResponse{Genres: genres})
}

// GET /genres/{genre}/movies
func (h *Handler) GetMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	genre := chi.URLParam(r, "genre")
	if genre == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Missing genre parameter")
		return
	}

	movies, err := h.service.MoviesByGenre(r.Context(), genre)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoviesResponse{Movies: movies, Total: len(movies)})
}
