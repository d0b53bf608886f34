package model

// Sequences holds the last identifiers handed out.  They are persisted with
// the state so that ids of cancelled tickets are never reissued.
type Sequences struct {
	LastUserID   uint64 `json:"last_user_id"`
	LastTicketID uint64 `json:"last_ticket_id"`
}

// AggregateState is the full durable snapshot handled by a persistence
// gateway.  Users and Tickets are mutable through the services; Movies and
// Showtimes form the reference catalog and are only read after seeding.
type AggregateState struct {
	Users     []User     `json:"users"`
	Tickets   []Ticket   `json:"tickets"`
	Movies    []Movie    `json:"movies"`
	Showtimes []Showtime `json:"showtimes"`
	Sequences Sequences  `json:"sequences"`
}

// Clone returns a copy whose slices can be modified without affecting s.
func (s AggregateState) Clone() AggregateState {
	out := AggregateState{Sequences: s.Sequences}
	out.Users = append([]User(nil), s.Users...)
	out.Tickets = append([]Ticket(nil), s.Tickets...)
	out.Movies = append([]Movie(nil), s.Movies...)
	out.Showtimes = append([]Showtime(nil), s.Showtimes...)
	return out
}

// NextUserID advances and returns the user sequence.
func (s *AggregateState) NextUserID() uint64 {
	s.Sequences.LastUserID++
	return s.Sequences.LastUserID
}

// NextTicketID advances and returns the ticket sequence.
func (s *AggregateState) NextTicketID() uint64 {
	s.Sequences.LastTicketID++
	return s.Sequences.LastTicketID
}

// Normalize repairs sequences that lag behind stored ids, which happens when
// a state file was written by hand or by an older version.
func (s *AggregateState) Normalize() {
	for _, u := range s.Users {
		if u.ID > s.Sequences.LastUserID {
			s.Sequences.LastUserID = u.ID
		}
	}
	for _, t := range s.Tickets {
		if t.ID > s.Sequences.LastTicketID {
			s.Sequences.LastTicketID = t.ID
		}
	}
}
