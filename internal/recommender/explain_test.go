package recommender

import (
	"strings"
	"testing"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

func TestJoinNatural(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"Drama"}, "Drama"},
		{[]string{"Drama", "Crime"}, "Drama and Crime"},
		{[]string{"Drama", "Crime", "Thriller"}, "Drama, Crime and Thriller"},
		{[]string{"A", "B", "C", "D"}, "A, B, C and D"},
	}
	for _, c := range cases {
		if got := joinNatural(c.in); got != c.want {
			t.Errorf("joinNatural(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExplainPersonalized(t *testing.T) {
	p := &userProfile{
		genrePrefs: map[string]float64{"Drama": 4.5, "Crime": 4.0, "Comedy": 2.0},
	}
	m := &domain.Movie{Title: "Midnight Verdict", Genres: []string{"Drama", "Crime", "Comedy"}, AverageRating: 9.0}

	got := explainPersonalized(p, m, 4.56)
	if !strings.Contains(got, "Drama and Crime") {
		t.Errorf("expected liked genres in explanation, got %q", got)
	}
	if strings.Contains(got, "Comedy") {
		t.Errorf("disliked genre should not appear, got %q", got)
	}
	if !strings.Contains(got, "4.6/5") {
		t.Errorf("expected one-decimal predicted rating, got %q", got)
	}

	// No liked overlap falls back to the popularity form.
	stranger := &domain.Movie{Title: "Carnival of Dust", Genres: []string{"Romance"}, AverageRating: 6.4}
	got = explainPersonalized(p, stranger, 3.4)
	if !strings.Contains(got, "6.4/10") {
		t.Errorf("expected popularity fallback, got %q", got)
	}
}
