package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/monitoring"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Ledger owns the in-memory aggregate state and writes it through to the
// persistence gateway.  One RWMutex guards the whole state: reads share
// it, and every mutation holds it exclusively across its check, its
// change and the Save.
type Ledger struct {
	mu    sync.RWMutex
	state model.AggregateState
	repo  repository.StateRepository
	cat   *catalog.Catalog
}

// OpenLedger loads the current state from repo.  On first run the repo
// yields the seed state; it is written out with the first mutation.
func OpenLedger(ctx context.Context, repo repository.StateRepository) (*Ledger, error) {
	st, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	monitoring.SetLiveTickets(len(st.Tickets))
	return &Ledger{state: st, repo: repo, cat: catalog.FromState(st)}, nil
}

// Catalog returns the catalog accessor built from the loaded state.
func (l *Ledger) Catalog() *catalog.Catalog { return l.cat }

// read runs fn under the shared lock.  fn must copy out anything it keeps.
func (l *Ledger) read(fn func(st *model.AggregateState)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(&l.state)
}

// apply runs fn against a copy of the state under the exclusive lock and
// saves the copy.  The copy replaces the current state only if fn and the
// Save both succeed; otherwise the current state is left untouched.
func (l *Ledger) apply(ctx context.Context, fn func(st *model.AggregateState) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	start := time.Now()
	err := l.repo.Save(ctx, next)
	monitoring.TrackStateSave(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	l.state = next
	monitoring.SetLiveTickets(len(next.Tickets))
	return nil
}

// user returns the user with the given id.
func (l *Ledger) user(id uint64) (model.User, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, u := range l.state.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}
