package handler

import (
	"encoding/json"
	"net/http"
)

// POST /users/{userID}/ratings
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}
	if req.MovieID <= 0 || req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "movie_id and a 1-5 rating are required")
		return
	}

	if err := h.service.AddRating(r.Context(), userID, req.MovieID, req.Rating); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "rating recorded"})
}
