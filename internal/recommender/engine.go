// Package recommender produces ranked, explained movie recommendations for a
// user from either a trained latent-factor model or a content/popularity
// cold-start policy.
package recommender

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reelrank/recommendation-engine/internal/artifact"
	"github.com/reelrank/recommendation-engine/internal/dataset"
	"github.com/reelrank/recommendation-engine/internal/domain"
	"github.com/reelrank/recommendation-engine/internal/model"
)

// Store is the external movie/rating store the engine reads from.
type Store interface {
	CountMovies(ctx context.Context) (int, error)
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	BulkInsertMovies(ctx context.Context, movies []domain.Movie) error
	ListRatingsByUser(ctx context.Context, userID int64) ([]domain.Rating, error)
}

// ModelArtifactID keys the trained latent-factor model in the artifact cache.
const ModelArtifactID = "recommender/latent-factors"

const (
	defaultLimit = 10
	maxLimit     = 50
)

type Config struct {
	DatasetPath                  string
	Hyperparams                  model.Hyperparams
	MinRatingsForPersonalization int
	BootstrapUsers               int
	Seed                         int64 // 0 draws a time-based seed
}

func DefaultConfig() Config {
	return Config{
		DatasetPath:                  "data/movies.tsv",
		Hyperparams:                  model.DefaultHyperparams(),
		MinRatingsForPersonalization: 3,
		BootstrapUsers:               100,
	}
}

// Engine serves recommendations over an immutable in-memory catalog. The
// trained model is owned by the artifact cache, not the engine, so it can be
// evicted under memory pressure and retrained on next use.
type Engine struct {
	store     Store
	artifacts *artifact.Cache
	cfg       Config

	ready      atomic.Bool
	initFlight singleflight.Group

	catalog []domain.Movie
	byID    map[int64]*domain.Movie
	genres  []string
}

func New(store Store, artifacts *artifact.Cache, cfg Config) *Engine {
	if cfg.MinRatingsForPersonalization <= 0 {
		cfg.MinRatingsForPersonalization = 3
	}
	if cfg.BootstrapUsers <= 0 {
		cfg.BootstrapUsers = 100
	}
	if cfg.Hyperparams.Factors <= 0 {
		cfg.Hyperparams = model.DefaultHyperparams()
	}
	return &Engine{
		store:     store,
		artifacts: artifacts,
		cfg:       cfg,
	}
}

// Ready reports whether initialization has completed.
func (e *Engine) Ready() bool { return e.ready.Load() }

// Initialize loads the catalog and trains the model. It is idempotent and
// collapses concurrent callers into one attempt; a failed attempt leaves the
// engine uninitialized so the next call retries.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.ready.Load() {
		return nil
	}
	_, err, _ := e.initFlight.Do("initialize", func() (any, error) {
		if e.ready.Load() {
			return nil, nil
		}
		if err := e.initialize(ctx); err != nil {
			log.Printf("[engine] initialization failed: %v", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrInitializationFailed, err)
		}
		e.ready.Store(true)
		return nil, nil
	})
	return err
}

func (e *Engine) initialize(ctx context.Context) error {
	count, err := e.store.CountMovies(ctx)
	if err != nil {
		return fmt.Errorf("count movies: %w", err)
	}
	if count == 0 {
		movies, err := dataset.LoadMovies(e.cfg.DatasetPath)
		if err != nil {
			return fmt.Errorf("bulk import: %w", err)
		}
		if err := e.store.BulkInsertMovies(ctx, movies); err != nil {
			return fmt.Errorf("bulk insert: %w", err)
		}
		log.Printf("[engine] imported %d movies from %s", len(movies), e.cfg.DatasetPath)
	}

	movies, err := e.store.ListMovies(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(movies) == 0 {
		return fmt.Errorf("catalog is empty after import")
	}

	byID := make(map[int64]*domain.Movie, len(movies))
	genreSet := make(map[string]struct{})
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
		for _, g := range movies[i].Genres {
			genreSet[g] = struct{}{}
		}
	}
	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	e.catalog = movies
	e.byID = byID
	e.genres = genres
	log.Printf("[engine] catalog ready: %d movies, %d genres", len(movies), len(genres))

	// Warm the model through the cache so Ready implies a trained model
	// exists (or at least existed; eviction just retrains on next use).
	if _, err := e.latentModel(ctx); err != nil {
		return fmt.Errorf("train model: %w", err)
	}
	return nil
}

func (e *Engine) latentModel(ctx context.Context) (*model.LatentFactors, error) {
	payload, err := e.artifacts.Acquire(ctx, ModelArtifactID, e.trainModel, artifact.AcquireOptions{
		Priority: artifact.PriorityHigh,
	})
	if err != nil {
		return nil, err
	}
	m, ok := payload.(*model.LatentFactors)
	if !ok {
		return nil, fmt.Errorf("unexpected artifact payload %T under %s", payload, ModelArtifactID)
	}
	return m, nil
}

// trainModel is the artifact loader for the latent-factor model. It
// synthesizes bootstrap interactions over the catalog and runs SGD.
func (e *Engine) trainModel(ctx context.Context) (any, int64, error) {
	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	interactions := e.syntheticInteractions(rng)
	start := time.Now()
	m, err := model.Train(interactions, e.cfg.Hyperparams, rng)
	if err != nil {
		return nil, 0, err
	}
	log.Printf("[engine] trained model: %d users, %d items, %d interactions in %s",
		m.TrainedUserCount(), m.TrainedItemCount(), len(interactions), time.Since(start))
	return m, m.SizeBytes(), nil
}

// syntheticInteractions builds the bootstrap training set: each synthetic
// user rates a random 5-19 movie subset, with ratings clustered in 3-5.
func (e *Engine) syntheticInteractions(rng *rand.Rand) []model.Interaction {
	var out []model.Interaction
	for u := 1; u <= e.cfg.BootstrapUsers; u++ {
		n := 5 + rng.Intn(15)
		if n > len(e.catalog) {
			n = len(e.catalog)
		}
		perm := rng.Perm(len(e.catalog))
		for _, idx := range perm[:n] {
			out = append(out, model.Interaction{
				UserID:  int64(u),
				MovieID: e.catalog[idx].ID,
				Rating:  syntheticRating(rng),
			})
		}
	}
	return out
}

func syntheticRating(rng *rand.Rand) float64 {
	r := math.Round(3.8 + rng.NormFloat64()*0.9)
	return math.Min(5, math.Max(1, r))
}

// PredictRating scores one (user, movie) pair through the latent-factor
// model, clamped to the 1-5 scale.
func (e *Engine) PredictRating(ctx context.Context, userID, movieID int64) (float64, error) {
	if !e.ready.Load() {
		return 0, domain.ErrModelUnavailable
	}
	if _, ok := e.byID[movieID]; !ok {
		return 0, fmt.Errorf("movie %d: %w", movieID, domain.ErrMovieNotFound)
	}
	m, err := e.latentModel(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	score, ok := m.Predict(userID, movieID)
	if !ok {
		// Catalog movie absent from the bootstrap sample; fall back to the
		// training mean.
		score = m.GlobalMean
	}
	return clamp(score, 1, 5), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
