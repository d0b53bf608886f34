// Package catalog provides read-only access to the movie and showtime
// reference data.  The catalog is built once from the loaded state and is
// never modified afterwards, so all methods are safe for concurrent use
// without locking.
package catalog

import (
	"errors"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ErrMovieNotFound is returned when no movie has the requested id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrShowtimeNotFound is returned when no showtime has the requested id.
var ErrShowtimeNotFound = errors.New("showtime not found")

// Accessor is the lookup contract consumed by the booking engine and the
// HTTP layer.  List methods return results in catalog order.
type Accessor interface {
	GetMovie(id uint64) (model.Movie, error)
	ListMovies() []model.Movie
	ListShowtimes(movieID uint64) []model.Showtime
	GetShowtime(id uint64) (model.Showtime, error)
}

// Catalog is an immutable in-memory Accessor.
type Catalog struct {
	movies    []model.Movie
	showtimes []model.Showtime
	movieIdx  map[uint64]int
	showIdx   map[uint64]int
}

var _ Accessor = (*Catalog)(nil)

// New builds a catalog from the given movies and showtimes.  The input
// order is kept as the catalog order.  Showtimes referencing an unknown
// movie are dropped, since they could never be displayed.
func New(movies []model.Movie, showtimes []model.Showtime) *Catalog {
	c := &Catalog{
		movies:   append([]model.Movie(nil), movies...),
		movieIdx: make(map[uint64]int, len(movies)),
		showIdx:  make(map[uint64]int, len(showtimes)),
	}
	for i, m := range c.movies {
		c.movieIdx[m.ID] = i
	}
	for _, s := range showtimes {
		if _, ok := c.movieIdx[s.MovieID]; !ok {
			continue
		}
		c.showIdx[s.ID] = len(c.showtimes)
		c.showtimes = append(c.showtimes, s)
	}
	return c
}

// FromState builds a catalog from the catalog section of a loaded state.
func FromState(st model.AggregateState) *Catalog {
	return New(st.Movies, st.Showtimes)
}

// GetMovie returns the movie with the given id or ErrMovieNotFound.
func (c *Catalog) GetMovie(id uint64) (model.Movie, error) {
	i, ok := c.movieIdx[id]
	if !ok {
		return model.Movie{}, ErrMovieNotFound
	}
	return c.movies[i], nil
}

// ListMovies returns all movies.
func (c *Catalog) ListMovies() []model.Movie {
	return append([]model.Movie(nil), c.movies...)
}

// ListShowtimes returns the showtimes of a movie.  An unknown movie yields
// an empty slice; callers that need to distinguish should call GetMovie.
func (c *Catalog) ListShowtimes(movieID uint64) []model.Showtime {
	out := make([]model.Showtime, 0)
	for _, s := range c.showtimes {
		if s.MovieID == movieID {
			out = append(out, s)
		}
	}
	return out
}

// GetShowtime returns the showtime with the given id or ErrShowtimeNotFound.
func (c *Catalog) GetShowtime(id uint64) (model.Showtime, error) {
	i, ok := c.showIdx[id]
	if !ok {
		return model.Showtime{}, ErrShowtimeNotFound
	}
	return c.showtimes[i], nil
}
