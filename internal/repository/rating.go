package repository

import (
	"context"
	"fmt"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

// Fetch a user's full rating history
func (r *Repository) ListRatingsByUser(ctx context.Context, userID int64) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, movie_id, rating, title, genres, rated_at
		FROM ratings
		WHERE user_id = $1
		ORDER BY rated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.UserID, &rt.MovieID, &rt.Rating, &rt.Title, &rt.Genres, &rt.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over ratings: %w", err)
	}
	return ratings, nil
}

// Insert or update a user's rating with title/genres denormalized at write time
func (r *Repository) InsertRating(ctx context.Context, rt domain.Rating) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ratings (user_id, movie_id, rating, title, genres, rated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET rating = EXCLUDED.rating, rated_at = NOW()`,
		rt.UserID, rt.MovieID, rt.Rating, rt.Title, rt.Genres,
	)
	if err != nil {
		return fmt.Errorf("insert rating user=%d movie=%d: %w", rt.UserID, rt.MovieID, err)
	}
	return nil
}
