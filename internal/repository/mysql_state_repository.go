package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// metaRowID is the primary key of the single engine_meta row.
const metaRowID = 1

// maxPlaceholders is the MySQL limit on parameters per prepared statement.
const maxPlaceholders = 65535

// defaultBatchRows bounds the rows written by one INSERT or DELETE.
const defaultBatchRows = 1000

// MySQLStateRepo maps the aggregate state onto the users, tickets, movies,
// showtimes and engine_meta tables created by database.Migrate.  Save
// applies the difference between the stored rows and the snapshot inside
// one transaction, so the tables always reflect a complete snapshot.  The
// presence of the engine_meta row marks an initialised store; without it
// Load returns the seed state.
type MySQLStateRepo struct {
	db    *sql.DB
	batch int
}

// NewMySQLStateRepo returns a MySQLStateRepo bound to the given database.
func NewMySQLStateRepo(db *sql.DB) *MySQLStateRepo {
	return &MySQLStateRepo{db: db, batch: defaultBatchRows}
}

// Load reads the whole snapshot.  Rows are ordered by id, which is also
// the catalog order of the seed.
func (r *MySQLStateRepo) Load(ctx context.Context) (model.AggregateState, error) {
	var st model.AggregateState
	err := r.db.QueryRowContext(ctx,
		`SELECT last_user_id, last_ticket_id FROM engine_meta WHERE id = ?`, metaRowID,
	).Scan(&st.Sequences.LastUserID, &st.Sequences.LastTicketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.SeedState(), nil
		}
		return model.AggregateState{}, err
	}

	if st.Users, err = r.loadUsers(ctx); err != nil {
		return model.AggregateState{}, err
	}
	if st.Tickets, err = r.loadTickets(ctx); err != nil {
		return model.AggregateState{}, err
	}
	if st.Movies, err = r.loadMovies(ctx); err != nil {
		return model.AggregateState{}, err
	}
	if st.Showtimes, err = r.loadShowtimes(ctx); err != nil {
		return model.AggregateState{}, err
	}
	st.Normalize()
	return st, nil
}

func (r *MySQLStateRepo) loadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, password_hash, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *MySQLStateRepo) loadTickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, showtime_id, seat_row, seat_col, created_at FROM tickets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.ShowtimeID, &t.SeatRow, &t.SeatCol, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *MySQLStateRepo) loadMovies(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, description, poster FROM movies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Poster); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MySQLStateRepo) loadShowtimes(ctx context.Context) ([]model.Showtime, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, movie_id, starts_at FROM showtimes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Showtime{}
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(&s.ID, &s.MovieID, &s.StartsAt); err != nil {
			return nil, err
		}
		s.StartsAt = s.StartsAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Save writes the snapshot within a single transaction.  Users and tickets
// are keyed by id: rows missing from the snapshot are deleted and new rows
// inserted, so a booking touches one row instead of rewriting the tables.
// Deletes run before inserts so a seat freed and rebooked in the same
// snapshot does not trip uq_ticket_seat.  The catalog is upserted, which
// keeps rows added by an operator outside the engine.
func (r *MySQLStateRepo) Save(ctx context.Context, st model.AggregateState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	users := rowSet{
		table:  "users",
		insert: `INSERT INTO users (id, username, password_hash, created_at) VALUES `,
		width:  4,
		n:      len(st.Users),
		id:     func(i int) uint64 { return st.Users[i].ID },
		args: func(i int) []interface{} {
			u := st.Users[i]
			return []interface{}{u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC()}
		},
	}
	if err := r.syncRows(ctx, tx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	tickets := rowSet{
		table:  "tickets",
		insert: `INSERT INTO tickets (id, user_id, showtime_id, seat_row, seat_col, created_at) VALUES `,
		width:  6,
		n:      len(st.Tickets),
		id:     func(i int) uint64 { return st.Tickets[i].ID },
		args: func(i int) []interface{} {
			t := st.Tickets[i]
			return []interface{}{t.ID, t.UserID, t.ShowtimeID, t.SeatRow, t.SeatCol, t.CreatedAt.UTC()}
		},
	}
	if err := r.syncRows(ctx, tx, tickets); err != nil {
		return fmt.Errorf("save tickets: %w", err)
	}

	err = r.insertBatches(ctx, tx,
		`INSERT INTO movies (id, title, description, poster) VALUES `,
		` ON DUPLICATE KEY UPDATE title = VALUES(title), description = VALUES(description), poster = VALUES(poster)`,
		4, len(st.Movies), func(i int) []interface{} {
			m := st.Movies[i]
			return []interface{}{m.ID, m.Title, m.Description, m.Poster}
		})
	if err != nil {
		return fmt.Errorf("save movies: %w", err)
	}

	err = r.insertBatches(ctx, tx,
		`INSERT INTO showtimes (id, movie_id, starts_at) VALUES `,
		` ON DUPLICATE KEY UPDATE movie_id = VALUES(movie_id), starts_at = VALUES(starts_at)`,
		3, len(st.Showtimes), func(i int) []interface{} {
			s := st.Showtimes[i]
			return []interface{}{s.ID, s.MovieID, s.StartsAt.UTC()}
		})
	if err != nil {
		return fmt.Errorf("save showtimes: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO engine_meta (id, last_user_id, last_ticket_id) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE last_user_id = VALUES(last_user_id), last_ticket_id = VALUES(last_ticket_id)`,
		metaRowID, st.Sequences.LastUserID, st.Sequences.LastTicketID,
	); err != nil {
		return fmt.Errorf("save sequences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// rowSet describes the id-keyed rows of one table in the snapshot.
type rowSet struct {
	table  string
	insert string
	width  int
	n      int
	id     func(i int) uint64
	args   func(i int) []interface{}
}

// syncRows makes the table hold exactly the ids of rs.  Stored rows are
// never updated in place: users and tickets are immutable once written.
func (r *MySQLStateRepo) syncRows(ctx context.Context, tx *sql.Tx, rs rowSet) error {
	stored, err := selectIDs(ctx, tx, rs.table)
	if err != nil {
		return err
	}

	want := make(map[uint64]bool, rs.n)
	var added []int
	for i := 0; i < rs.n; i++ {
		id := rs.id(i)
		want[id] = true
		if !stored[id] {
			added = append(added, i)
		}
	}
	var removed []uint64
	for id := range stored {
		if !want[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	size := r.batchRows(1)
	for start := 0; start < len(removed); start += size {
		end := min(start+size, len(removed))
		args := make([]interface{}, 0, end-start)
		for _, id := range removed[start:end] {
			args = append(args, id)
		}
		q := `DELETE FROM ` + rs.table + ` WHERE id IN (` + placeholders(end-start) + `)`
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	return r.insertBatches(ctx, tx, rs.insert, "", rs.width, len(added), func(i int) []interface{} {
		return rs.args(added[i])
	})
}

// insertBatches writes n rows with as many multi-row INSERTs as the batch
// size and the placeholder limit require.
func (r *MySQLStateRepo) insertBatches(ctx context.Context, tx *sql.Tx, head, suffix string, width, n int, row func(i int) []interface{}) error {
	size := r.batchRows(width)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		args := make([]interface{}, 0, (end-start)*width)
		for i := start; i < end; i++ {
			args = append(args, row(i)...)
		}
		if _, err := tx.ExecContext(ctx, bulkInsert(head, width, end-start, suffix), args...); err != nil {
			return err
		}
	}
	return nil
}

// batchRows returns how many rows of the given width fit in one statement.
func (r *MySQLStateRepo) batchRows(width int) int {
	size := r.batch
	if size <= 0 {
		size = defaultBatchRows
	}
	if limit := maxPlaceholders / width; size > limit {
		size = limit
	}
	return size
}

func selectIDs(ctx context.Context, tx *sql.Tx, table string) (map[uint64]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// bulkInsert builds a multi-row INSERT with n groups of width placeholders,
// followed by an optional suffix such as an ON DUPLICATE KEY clause.
func bulkInsert(head string, width, n int, suffix string) string {
	group := "(" + placeholders(width) + ")"
	var b strings.Builder
	b.WriteString(head)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(group)
	}
	b.WriteString(suffix)
	return b.String()
}
