package dataset

import (
	"strings"
	"testing"
)

const sample = `tt0111161	The Shawshank Redemption	Drama	1994	9.3	2,800,000
tt0068646	The Godfather	Crime, Drama	1972	9.2	1,900,000

# a comment line
tt0133093	The Matrix	Action, Sci-Fi	1999	8.7	1,700,000
`

func TestParseMovies(t *testing.T) {
	movies, err := ParseMovies(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(movies) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(movies))
	}

	// Ids are 1-based in file order, skipping blanks and comments.
	for i, m := range movies {
		if m.ID != int64(i+1) {
			t.Errorf("movie %d: expected id %d, got %d", i, i+1, m.ID)
		}
	}

	g := movies[1]
	if g.Title != "The Godfather" {
		t.Errorf("unexpected title %q", g.Title)
	}
	if len(g.Genres) != 2 || g.Genres[0] != "Crime" || g.Genres[1] != "Drama" {
		t.Errorf("unexpected genres %v", g.Genres)
	}
	if g.Year != 1972 {
		t.Errorf("unexpected year %d", g.Year)
	}
	if g.AverageRating != 9.2 {
		t.Errorf("unexpected rating %f", g.AverageRating)
	}
	if g.RatingCount != 1900000 {
		t.Errorf("comma-grouped vote count not parsed, got %d", g.RatingCount)
	}
}

func TestParseMoviesRejectsMalformedRows(t *testing.T) {
	cases := map[string]string{
		"missing field":  "tt1\tTitle\tDrama\t1999\t8.0",
		"empty title":    "tt1\t \tDrama\t1999\t8.0\t100",
		"no genres":      "tt1\tTitle\t \t1999\t8.0\t100",
		"bad year":       "tt1\tTitle\tDrama\tMCMXCIX\t8.0\t100",
		"rating too big": "tt1\tTitle\tDrama\t1999\t11.0\t100",
		"bad votes":      "tt1\tTitle\tDrama\t1999\t8.0\tmany",
	}
	for name, row := range cases {
		if _, err := ParseMovies(strings.NewReader(row + "\n")); err == nil {
			t.Errorf("%s: expected parse error for %q", name, row)
		}
	}
}
