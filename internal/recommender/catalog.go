package recommender

import (
	"context"
	"fmt"
	"strings"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

// SearchMovies returns catalog movies whose title contains query,
// case-insensitively.
func (e *Engine) SearchMovies(ctx context.Context, query string) ([]domain.Movie, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	var out []domain.Movie
	for _, m := range e.catalog {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
		}
	}
	return out, nil
}

// MoviesByGenre returns catalog movies tagged with the given genre.
func (e *Engine) MoviesByGenre(ctx context.Context, genre string) ([]domain.Movie, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	var out []domain.Movie
	for i := range e.catalog {
		if e.catalog[i].HasGenre(genre) {
			out = append(out, e.catalog[i])
		}
	}
	return out, nil
}

// Genres returns the distinct genres across the catalog, sorted. The result
// is a copy; callers may mutate it freely.
func (e *Engine) Genres(ctx context.Context) ([]string, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(e.genres))
	copy(out, e.genres)
	return out, nil
}

// MovieByID looks up one catalog movie.
func (e *Engine) MovieByID(ctx context.Context, id int64) (*domain.Movie, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	m, ok := e.byID[id]
	if !ok {
		return nil, fmt.Errorf("movie %d: %w", id, domain.ErrMovieNotFound)
	}
	return m, nil
}
