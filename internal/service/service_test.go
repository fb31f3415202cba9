package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/reelrank/recommendation-engine/internal/artifact"
	"github.com/reelrank/recommendation-engine/internal/domain"
	"github.com/reelrank/recommendation-engine/internal/model"
	"github.com/reelrank/recommendation-engine/internal/recommender"
)

type memoryStore struct {
	movies  []domain.Movie
	ratings map[int64][]domain.Rating
}

func (s *memoryStore) CountMovies(ctx context.Context) (int, error) {
	return len(s.movies), nil
}

func (s *memoryStore) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.movies, nil
}

func (s *memoryStore) BulkInsertMovies(ctx context.Context, movies []domain.Movie) error {
	s.movies = append(s.movies, movies...)
	return nil
}

func (s *memoryStore) ListRatingsByUser(ctx context.Context, userID int64) ([]domain.Rating, error) {
	return s.ratings[userID], nil
}

func (s *memoryStore) InsertRating(ctx context.Context, rt domain.Rating) error {
	s.ratings[rt.UserID] = append(s.ratings[rt.UserID], rt)
	return nil
}

type memoryCache struct {
	entries map[string][]domain.Recommendation
	getErr  error
	cleared int
}

func cacheKey(userID int64, limit int) string {
	return fmt.Sprintf("%d:%d", userID, limit)
}

func (c *memoryCache) Get(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	recs, ok := c.entries[cacheKey(userID, limit)]
	return recs, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, userID int64, limit int, recs []domain.Recommendation) error {
	c.entries[cacheKey(userID, limit)] = recs
	return nil
}

func (c *memoryCache) ClearUserCache(ctx context.Context, userID int64) error {
	c.cleared++
	c.entries = make(map[string][]domain.Recommendation)
	return nil
}

func newTestService(t *testing.T, store *memoryStore, rc *memoryCache) *Service {
	t.Helper()
	artifacts := artifact.New(artifact.Config{CleanupInterval: time.Hour})
	t.Cleanup(artifacts.Stop)

	cfg := recommender.DefaultConfig()
	cfg.Hyperparams = model.Hyperparams{Factors: 4, LearningRate: 0.01, Regularization: 0.1, Iterations: 2}
	cfg.BootstrapUsers = 5
	cfg.Seed = 1

	engine := recommender.New(store, artifacts, cfg)
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return NewService(engine, rc, store)
}

func serviceCatalog() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "Midnight Verdict", Genres: []string{"Drama"}, Year: 1994, AverageRating: 9.0, RatingCount: 250000},
		{ID: 2, Title: "Steel Horizon", Genres: []string{"Action"}, Year: 1999, AverageRating: 8.6, RatingCount: 180000},
		{ID: 3, Title: "Carnival of Dust", Genres: []string{"Comedy"}, Year: 2011, AverageRating: 6.4, RatingCount: 12000},
	}
}

func TestGetRecommendationsFillsCache(t *testing.T) {
	store := &memoryStore{movies: serviceCatalog(), ratings: map[int64][]domain.Rating{}}
	rc := &memoryCache{entries: map[string][]domain.Recommendation{}}
	svc := newTestService(t, store, rc)

	result, err := svc.GetRecommendations(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if result.CacheHit {
		t.Error("first request should be a cache miss")
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(result.Recommendations))
	}

	again, err := svc.GetRecommendations(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("recommend again: %v", err)
	}
	if !again.CacheHit {
		t.Error("second request should hit the response cache")
	}
}

func TestGetRecommendationsClampsLimitInEngine(t *testing.T) {
	store := &memoryStore{movies: serviceCatalog(), ratings: map[int64][]domain.Rating{}}
	rc := &memoryCache{entries: map[string][]domain.Recommendation{}}
	svc := newTestService(t, store, rc)

	// A zero limit falls through to the engine's default of 10, which the
	// three-movie catalog then caps.
	result, err := svc.GetRecommendations(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(result.Recommendations) != 3 {
		t.Errorf("expected 3 recommendations for the full catalog, got %d", len(result.Recommendations))
	}
}

func TestGetRecommendationsSurvivesCacheErrors(t *testing.T) {
	store := &memoryStore{movies: serviceCatalog(), ratings: map[int64][]domain.Rating{}}
	rc := &memoryCache{entries: map[string][]domain.Recommendation{}, getErr: errors.New("redis down")}
	svc := newTestService(t, store, rc)

	result, err := svc.GetRecommendations(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("cache errors must not fail the request: %v", err)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations despite cache failure")
	}
}

func TestAddRatingDenormalizesAndInvalidates(t *testing.T) {
	store := &memoryStore{movies: serviceCatalog(), ratings: map[int64][]domain.Rating{}}
	rc := &memoryCache{entries: map[string][]domain.Recommendation{}}
	svc := newTestService(t, store, rc)

	if err := svc.AddRating(context.Background(), 9, 2, 4); err != nil {
		t.Fatalf("add rating: %v", err)
	}

	stored := store.ratings[9]
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored rating, got %d", len(stored))
	}
	if stored[0].Title != "Steel Horizon" || len(stored[0].Genres) != 1 || stored[0].Genres[0] != "Action" {
		t.Errorf("rating not denormalized: %+v", stored[0])
	}
	if rc.cleared != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", rc.cleared)
	}
}

func TestAddRatingValidation(t *testing.T) {
	store := &memoryStore{movies: serviceCatalog(), ratings: map[int64][]domain.Rating{}}
	rc := &memoryCache{entries: map[string][]domain.Recommendation{}}
	svc := newTestService(t, store, rc)

	if err := svc.AddRating(context.Background(), 9, 1, 6); err == nil {
		t.Error("expected error for out-of-range rating")
	}
	if err := svc.AddRating(context.Background(), 9, 404, 3); !errors.Is(err, domain.ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}
