package domain

type Recommendation struct {
	MovieID         int64    `json:"movie_id"`
	Title           string   `json:"title"`
	Genres          []string `json:"genres"`
	PredictedRating float64  `json:"predicted_rating"` // 1-5, one decimal
	Confidence      float64  `json:"confidence"`       // 0-1
	Explanation     string   `json:"explanation"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	Recommendations []Recommendation
	CacheHit        bool
}
