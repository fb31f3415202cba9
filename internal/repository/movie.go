package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

// Count total movies
func (r *Repository) CountMovies(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM movies`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return total, nil
}

// Fetch the full catalog
func (r *Repository) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, genres, year, average_rating, rating_count
		FROM movies
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genres, &m.Year, &m.AverageRating, &m.RatingCount); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over movies: %w", err)
	}
	return movies, nil
}

// Bulk insert catalog rows, used by the one-time dataset import
func (r *Repository) BulkInsertMovies(ctx context.Context, movies []domain.Movie) error {
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"movies"},
		[]string{"id", "title", "genres", "year", "average_rating", "rating_count"},
		pgx.CopyFromSlice(len(movies), func(i int) ([]any, error) {
			m := movies[i]
			return []any{m.ID, m.Title, m.Genres, m.Year, m.AverageRating, m.RatingCount}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("bulk insert %d movies: %w", len(movies), err)
	}
	return nil
}
