// Package service implements the user directory and the booking engine on
// top of a single guarded aggregate state.
package service

import "errors"

var (
	// ErrConflict is returned by Register when the username is taken.
	ErrConflict = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Authenticate.  It never says
	// which of username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSeatConflict is returned by Book when the seat is already held.
	ErrSeatConflict = errors.New("seat already booked")
	// ErrInvalidReference covers unknown users, showtimes, movies and seats
	// outside the grid.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound is returned by Cancel for an unknown ticket.
	ErrNotFound = errors.New("ticket not found")
	// ErrNotOwner is returned by Cancel when the ticket belongs to another user.
	ErrNotOwner = errors.New("ticket belongs to another user")
	// ErrIOFailure wraps persistence failures.  State is unchanged when it
	// is returned.
	ErrIOFailure = errors.New("persistence failure")
	// ErrInvalidInput is returned for empty usernames or passwords.
	ErrInvalidInput = errors.New("invalid input")
)
