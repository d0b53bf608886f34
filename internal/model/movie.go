package model

import "time"

// Movie is a catalog entry.  Movies are reference data: the booking
// engine reads them but never changes them.
type Movie struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Poster      string `json:"poster"` // opaque poster reference, not resolved by the engine
}

// Showtime is a scheduled screening of a movie.  StartsAt is kept in UTC.
type Showtime struct {
	ID       uint64    `json:"id"`
	MovieID  uint64    `json:"movie_id"`
	StartsAt time.Time `json:"datetime"`
}
