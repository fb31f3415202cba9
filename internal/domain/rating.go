package domain

import "time"

type Rating struct {
	UserID  int64     `json:"user_id"`
	MovieID int64     `json:"movie_id"`
	Rating  int       `json:"rating"` // 1-5
	Title   string    `json:"title"`
	Genres  []string  `json:"genres"`
	RatedAt time.Time `json:"rated_at"`
}
