package service

import (
	"context"
	"fmt"
	"log"

	"github.com/reelrank/recommendation-engine/internal/domain"
	"github.com/reelrank/recommendation-engine/internal/recommender"
)

// ResponseCache caches rendered recommendation lists per user and limit.
// Cache failures degrade to engine calls, never to request failures.
type ResponseCache interface {
	Get(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, userID int64, limit int, recs []domain.Recommendation) error
	ClearUserCache(ctx context.Context, userID int64) error
}

// RatingWriter persists user ratings.
type RatingWriter interface {
	InsertRating(ctx context.Context, rating domain.Rating) error
}

type Service struct {
	engine  *recommender.Engine
	cache   ResponseCache
	ratings RatingWriter
}

func NewService(engine *recommender.Engine, cache ResponseCache, ratings RatingWriter) *Service {
	return &Service{
		engine:  engine,
		cache:   cache,
		ratings: ratings,
	}
}

// GetRecommendations serves from the response cache when possible. Limit
// clamping is owned by the engine; the raw limit keys the cache here.
func (s *Service) GetRecommendations(ctx context.Context, userID int64, limit int) (*domain.RecommendationResult, error) {
	// Check cache
	cached, found, err := s.cache.Get(ctx, userID, limit)
	if err != nil {
		log.Printf("[service] cache get error for user %d: %v", userID, err)
	}
	if found {
		return &domain.RecommendationResult{
			Recommendations: cached,
			CacheHit:        true,
		}, nil
	}

	// Cache miss -> generate recommendations
	recs, err := s.engine.GenerateRecommendations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, userID, limit, recs); cacheErr != nil {
		log.Printf("[service] cache set error for user %d: %v", userID, cacheErr)
	}

	return &domain.RecommendationResult{
		Recommendations: recs,
		CacheHit:        false,
	}, nil
}

// AddRating persists a rating with the movie's title and genres denormalized
// at write time, then invalidates the user's cached recommendations.
func (s *Service) AddRating(ctx context.Context, userID, movieID int64, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("rating %d out of 1-5 range", value)
	}

	movie, err := s.engine.MovieByID(ctx, movieID)
	if err != nil {
		return err
	}

	if err := s.ratings.InsertRating(ctx, domain.Rating{
		UserID:  userID,
		MovieID: movieID,
		Rating:  value,
		Title:   movie.Title,
		Genres:  movie.Genres,
	}); err != nil {
		return err
	}

	if err := s.cache.ClearUserCache(ctx, userID); err != nil {
		log.Printf("[service] cache invalidation error for user %d: %v", userID, err)
	}
	return nil
}

func (s *Service) PredictRating(ctx context.Context, userID, movieID int64) (float64, error) {
	return s.engine.PredictRating(ctx, userID, movieID)
}

func (s *Service) SearchMovies(ctx context.Context, query string) ([]domain.Movie, error) {
	return s.engine.SearchMovies(ctx, query)
}

func (s *Service) MoviesByGenre(ctx context.Context, genre string) ([]domain.Movie, error) {
	return s.engine.MoviesByGenre(ctx, genre)
}

func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return s.engine.Genres(ctx)
}

func (s *Service) MovieByID(ctx context.Context, id int64) (*domain.Movie, error) {
	return s.engine.MovieByID(ctx, id)
}
