package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/monitoring"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

// UserDirectory registers and authenticates users.  It owns username
// uniqueness; users are never updated or removed.
type UserDirectory struct {
	ledger *Ledger
	hasher utils.PasswordHasher
	// dummyHash is compared against when the username is unknown so that
	// both failure paths take the same time.
	dummyHash string
	now       func() time.Time
}

// NewUserDirectory returns a directory hashing passwords with the given
// bcrypt cost.  Out of range costs fall back to bcrypt.DefaultCost.
func NewUserDirectory(l *Ledger, bcryptCost int) *UserDirectory {
	hasher := utils.NewPasswordHasher(bcryptCost)
	dummy, _ := hasher.Hash("unused-credential")
	return &UserDirectory{
		ledger:    l,
		hasher:    hasher,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user and persists it before returning the new id.
// Usernames are matched exactly, so "Alice" and "alice" are distinct.
func (d *UserDirectory) Register(ctx context.Context, username, password string) (uint64, error) {
	if username == "" || password == "" {
		monitoring.TrackRegistration(monitoring.OutcomeRejected)
		return 0, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	// hashing is slow, keep it outside the lock
	hash, err := d.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			monitoring.TrackRegistration(monitoring.OutcomeRejected)
			return 0, fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, utils.MaxPasswordBytes)
		}
		monitoring.TrackRegistration(monitoring.OutcomeError)
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id uint64
	err = d.ledger.apply(ctx, func(st *model.AggregateState) error {
		for _, u := range st.Users {
			if u.Username == username {
				return ErrConflict
			}
		}
		id = st.NextUserID()
		st.Users = append(st.Users, model.User{
			ID:           id,
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    d.now(),
		})
		return nil
	})
	switch {
	case err == nil:
		monitoring.TrackRegistration(monitoring.OutcomeOK)
		slog.Info("user registered", "user_id", id, "username", username)
		return id, nil
	case errors.Is(err, ErrConflict):
		monitoring.TrackRegistration(monitoring.OutcomeConflict)
		return 0, err
	default:
		monitoring.TrackRegistration(monitoring.OutcomeError)
		slog.Error("register failed", "username", username, "error", err)
		return 0, err
	}
}

// Authenticate returns the id of the user whose username and password
// both match.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var (
		found bool
		user  model.User
	)
	d.ledger.read(func(st *model.AggregateState) {
		for _, u := range st.Users {
			if u.Username == username {
				user, found = u, true
				return
			}
		}
	})
	if !found {
		_ = d.hasher.Verify(d.dummyHash, password)
		return 0, ErrInvalidCredentials
	}
	if !d.hasher.Verify(user.PasswordHash, password) {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// Lookup returns the user with the given id.
func (d *UserDirectory) Lookup(ctx context.Context, userID uint64) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	user, ok := d.ledger.user(userID)
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %d", ErrInvalidReference, userID)
	}
	return user, nil
}
