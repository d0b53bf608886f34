package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Options{User: "cinema", Pass: "secret", Host: "db", Port: "3306", Name: "booking"})

	assert.True(t, strings.HasPrefix(dsn, "cinema:secret@tcp(db:3306)/booking?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildDSN_NoPassword(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Options{User: "root", Host: "localhost", Port: "3306", Name: "booking"})

	assert.True(t, strings.HasPrefix(dsn, "root@tcp(localhost:3306)/booking?"), dsn)
}

func TestSchema_EnforcesSeatUniqueness(t *testing.T) {
	t.Parallel()

	var tickets string
	for _, stmt := range schema {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS tickets") {
			tickets = stmt
		}
	}
	assert.Contains(t, tickets, "UNIQUE KEY uq_ticket_seat (showtime_id, seat_row, seat_col)")
}
