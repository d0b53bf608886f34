package database

// schema lists the DDL applied by Migrate.  usernames use a binary collation
// because username matching is case-sensitive, and uq_ticket_seat mirrors the
// seat-uniqueness rule enforced by the booking engine.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		username      VARCHAR(191) COLLATE utf8mb4_bin NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id          BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		poster      VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id        BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		movie_id  BIGINT UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		KEY idx_showtimes_movie (movie_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id          BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		user_id     BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_row    INT NOT NULL,
		seat_col    INT NOT NULL,
		created_at  DATETIME(6) NOT NULL,
		UNIQUE KEY uq_ticket_seat (showtime_id, seat_row, seat_col),
		KEY idx_tickets_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS engine_meta (
		id             TINYINT UNSIGNED NOT NULL PRIMARY KEY,
		last_user_id   BIGINT UNSIGNED NOT NULL,
		last_ticket_id BIGINT UNSIGNED NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
