package recommender

import (
	"fmt"
	"strings"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

// explainPersonalized names the liked genres the movie shares with the user,
// falling back to a popularity explanation when there is no overlap.
func explainPersonalized(p *userProfile, m *domain.Movie, predicted float64) string {
	var liked []string
	for _, g := range m.Genres {
		if p.genrePrefs[g] > positivePreference {
			liked = append(liked, g)
		}
	}
	if len(liked) == 0 {
		return explainPopular(m)
	}
	return fmt.Sprintf("Because you enjoy %s titles, predicted %.1f/5", joinNatural(liked), predicted)
}

func explainPopular(m *domain.Movie) string {
	return fmt.Sprintf("Popular choice with a %.1f/10 average rating", m.AverageRating)
}

// joinNatural renders "X", "X and Y", or "X, Y and Z".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
