package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// MemoryStateRepo keeps the snapshot in process memory.  It is meant for
// development and tests; nothing survives a restart.
type MemoryStateRepo struct {
	mu    sync.Mutex
	state *model.AggregateState
	saves int
}

// NewMemoryStateRepo returns an empty repository whose first Load yields
// the seed state.
func NewMemoryStateRepo() *MemoryStateRepo { return &MemoryStateRepo{} }

// Load returns a copy of the last saved snapshot, or the seed state.
func (r *MemoryStateRepo) Load(ctx context.Context) (model.AggregateState, error) {
	if err := ctx.Err(); err != nil {
		return model.AggregateState{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return catalog.SeedState(), nil
	}
	return r.state.Clone(), nil
}

// Save stores a copy of the snapshot.
func (r *MemoryStateRepo) Save(ctx context.Context, st model.AggregateState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := st.Clone()
	r.state = &cp
	r.saves++
	return nil
}

// Saves reports how many snapshots have been stored.
func (r *MemoryStateRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
