package recommender

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

const (
	genreWeight      = 0.7
	popularityWeight = 0.3

	// positivePreference is the mean-rating threshold above which a genre
	// counts as liked, for both the cold-start filter and explanations.
	positivePreference = 3.5

	// keepAbove drops weak personalized predictions from the result list.
	keepAbove = 3.0

	coldConfidence    = 0.3
	partialConfidence = 0.5
)

// userProfile is derived fresh per request from the user's rating history.
type userProfile struct {
	ratings    map[int64]int
	genrePrefs map[string]float64 // mean rating per genre
	mean       float64            // mean across all of the user's ratings
}

func buildProfile(ratings []domain.Rating) *userProfile {
	p := &userProfile{
		ratings:    make(map[int64]int, len(ratings)),
		genrePrefs: make(map[string]float64),
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var total float64
	for _, r := range ratings {
		p.ratings[r.MovieID] = r.Rating
		total += float64(r.Rating)
		for _, g := range r.Genres {
			sums[g] += float64(r.Rating)
			counts[g]++
		}
	}
	if len(ratings) > 0 {
		p.mean = total / float64(len(ratings))
	}
	for g, s := range sums {
		p.genrePrefs[g] = s / float64(counts[g])
	}
	return p
}

// genreScore averages the user's preference across genres shared with the
// movie. No overlap falls back to the user's overall mean, and an empty
// profile to a neutral 3.5.
func (p *userProfile) genreScore(m *domain.Movie) float64 {
	if len(p.genrePrefs) == 0 {
		return 3.5
	}
	var sum float64
	var n int
	for _, g := range m.Genres {
		if pref, ok := p.genrePrefs[g]; ok {
			sum += pref
			n++
		}
	}
	if n == 0 {
		return p.mean
	}
	return sum / float64(n)
}

func (p *userProfile) sharesLikedGenre(m *domain.Movie) bool {
	for _, g := range m.Genres {
		if p.genrePrefs[g] > positivePreference {
			return true
		}
	}
	return false
}

// GenerateRecommendations returns up to limit ranked recommendations for the
// user, never including movies the user already rated. Users below the
// personalization threshold go through the cold-start path.
func (e *Engine) GenerateRecommendations(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	ratings, err := e.store.ListRatingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings for user %d: %w", userID, err)
	}
	profile := buildProfile(ratings)

	if len(profile.ratings) >= e.cfg.MinRatingsForPersonalization {
		return e.personalized(profile, limit), nil
	}
	return e.coldStart(profile, limit), nil
}

func (e *Engine) personalized(p *userProfile, limit int) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, limit)
	for i := range e.catalog {
		m := &e.catalog[i]
		if _, rated := p.ratings[m.ID]; rated {
			continue
		}

		predicted := clamp(genreWeight*p.genreScore(m)+popularityWeight*(m.AverageRating/2), 1, 5)
		if predicted <= keepAbove {
			continue
		}

		recs = append(recs, domain.Recommendation{
			MovieID:         m.ID,
			Title:           m.Title,
			Genres:          m.Genres,
			PredictedRating: round1(predicted),
			Confidence:      p.confidence(m),
			Explanation:     explainPersonalized(p, m, predicted),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PredictedRating > recs[j].PredictedRating
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func (p *userProfile) confidence(m *domain.Movie) float64 {
	c := 0.4 + 0.05*float64(len(p.ratings))
	if p.sharesLikedGenre(m) {
		c += 0.2
	}
	return math.Min(0.9, c)
}

// coldStart ranks unrated movies by a popularity/credibility blend. With any
// history at all, candidates must share a liked genre; a fully cold user
// gets the unfiltered popular set.
func (e *Engine) coldStart(p *userProfile, limit int) []domain.Recommendation {
	hasRatings := len(p.ratings) > 0

	candidates := make([]*domain.Movie, 0, len(e.catalog))
	for i := range e.catalog {
		m := &e.catalog[i]
		if _, rated := p.ratings[m.ID]; rated {
			continue
		}
		if hasRatings && !p.sharesLikedGenre(m) {
			continue
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return popularity(candidates[i]) > popularity(candidates[j])
	})
	if len(candidates) > 2*limit {
		candidates = candidates[:2*limit]
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	confidence := coldConfidence
	if hasRatings {
		confidence = partialConfidence
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, m := range candidates {
		recs = append(recs, domain.Recommendation{
			MovieID:         m.ID,
			Title:           m.Title,
			Genres:          m.Genres,
			PredictedRating: round1(clamp(m.AverageRating/2, 1, 5)),
			Confidence:      confidence,
			Explanation:     explainPopular(m),
		})
	}
	return recs
}

// popularity blends quality with vote credibility. The +1 guards movies with
// a zero vote count.
func popularity(m *domain.Movie) float64 {
	return m.AverageRating * math.Log(float64(m.RatingCount)+1)
}
