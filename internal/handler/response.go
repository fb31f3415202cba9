package handler

import "github.com/reelrank/recommendation-engine/internal/domain"

type RecommendationResponse struct {
	UserID          int64                     `json:"user_id"`
	Recommendations []domain.Recommendation   `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type MoviesResponse struct {
	Movies []domain.Movie `json:"movies"`
	Total  int            `json:"total"`
}

type GenresResponse struct {
	Genres []string `json:"genres"`
}

type PredictionResponse struct {
	UserID          int64   `json:"user_id"`
	MovieID         int64   `json:"movie_id"`
	PredictedRating float64 `json:"predicted_rating"`
}

type RatingRequest struct {
	MovieID int64 `json:"movie_id"`
	Rating  int   `json:"rating"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
