package domain

type Movie struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Genres        []string `json:"genres"`
	Year          int      `json:"year"`
	AverageRating float64  `json:"average_rating"` // external 0-10 scale
	RatingCount   int      `json:"rating_count"`
}

// HasGenre reports whether the movie carries the given genre tag.
func (m *Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
