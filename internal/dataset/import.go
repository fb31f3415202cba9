// Package dataset parses the bundled movie catalog used to bootstrap an
// empty store. The file is tab-separated with columns: external id, title,
// comma-separated genres, year, average rating (0-10 scale), and a vote
// count that may be comma-grouped (e.g. "1,234").
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/reelrank/recommendation-engine/internal/domain"
)

const fieldCount = 6

// LoadMovies reads and parses the catalog file at path.
func LoadMovies(path string) ([]domain.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ParseMovies(f)
}

// ParseMovies parses catalog rows, assigning 1-based ids in file order.
// Blank lines and #-comments are skipped; any malformed row fails the parse.
func ParseMovies(r io.Reader) ([]domain.Movie, error) {
	var movies []domain.Movie
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		m, err := parseRow(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		m.ID = int64(len(movies) + 1)
		movies = append(movies, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return movies, nil
}

func parseRow(raw string) (domain.Movie, error) {
	fields := strings.Split(raw, "\t")
	if len(fields) != fieldCount {
		return domain.Movie{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	title := strings.TrimSpace(fields[1])
	if title == "" {
		return domain.Movie{}, fmt.Errorf("empty title")
	}

	var genres []string
	for _, g := range strings.Split(fields[2], ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		return domain.Movie{}, fmt.Errorf("no genres")
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return domain.Movie{}, fmt.Errorf("bad year %q: %w", fields[3], err)
	}

	avg, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("bad average rating %q: %w", fields[4], err)
	}
	if avg < 0 || avg > 10 {
		return domain.Movie{}, fmt.Errorf("average rating %f out of 0-10 range", avg)
	}

	// Vote counts come comma-grouped from the source export.
	votesRaw := strings.ReplaceAll(strings.TrimSpace(fields[5]), ",", "")
	votes, err := strconv.Atoi(votesRaw)
	if err != nil || votes < 0 {
		return domain.Movie{}, fmt.Errorf("bad vote count %q", fields[5])
	}

	return domain.Movie{
		Title:         title,
		Genres:        genres,
		Year:          year,
		AverageRating: avg,
		RatingCount:   votes,
	}, nil
}
