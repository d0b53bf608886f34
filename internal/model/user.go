package model

import "time"

// User represents a registered account.  Users are created by
// registration and are never updated or deleted afterwards.
//
// Fields:
//
//	ID           – stable identifier assigned at registration.
//	Username     – unique, case-sensitive login name.
//	PasswordHash – bcrypt hash of the password credential.
//	CreatedAt    – registration timestamp (UTC).
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
