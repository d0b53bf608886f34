package model

import "fmt"

// Seat is a 1-indexed coordinate in a showtime's seat grid.  It is a
// value, not a stored entity; tickets are indexed by it.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the seat as "row-col", the label used in event logs.
func (s Seat) String() string { return fmt.Sprintf("%d-%d", s.Row, s.Col) }

// Grid describes the fixed seat layout configured for the venue.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Contains reports whether the seat lies inside the grid bounds.
func (g Grid) Contains(s Seat) bool {
	return s.Row >= 1 && s.Row <= g.Rows && s.Col >= 1 && s.Col <= g.Cols
}
