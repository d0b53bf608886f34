package catalog

import (
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// showtimeLayout is the "YYYY-MM-DD HH:MM" format used for seed datetimes.
const showtimeLayout = "2006-01-02 15:04"

// SeedState returns the state used when no persisted state exists yet:
// no users, no tickets and the fixed reference catalog of three movies with
// one showtime each.
func SeedState() model.AggregateState {
	return model.AggregateState{
		Users:   []model.User{},
		Tickets: []model.Ticket{},
		Movies: []model.Movie{
			{ID: 1, Title: "Movie 1", Description: "Description of movie 1", Poster: "poster1.jpg"},
			{ID: 2, Title: "Movie 2", Description: "Description of movie 2", Poster: "poster2.jpg"},
			{ID: 3, Title: "Movie 3", Description: "Description of movie 3", Poster: "poster3.jpg"},
		},
		Showtimes: []model.Showtime{
			{ID: 1, MovieID: 1, StartsAt: mustTime("2023-12-25 19:00")},
			{ID: 2, MovieID: 2, StartsAt: mustTime("2023-12-25 21:00")},
			{ID: 3, MovieID: 3, StartsAt: mustTime("2023-12-26 18:00")},
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.ParseInLocation(showtimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
