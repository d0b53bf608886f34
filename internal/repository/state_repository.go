package repository

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// StateRepository is the persistence gateway contract.  Load returns the
// seed state (see catalog.SeedState) when nothing has been stored yet.
// Save must not return before the snapshot is durable.
type StateRepository interface {
	Load(ctx context.Context) (model.AggregateState, error)
	Save(ctx context.Context, st model.AggregateState) error
}

var (
	_ StateRepository = (*FileStateRepo)(nil)
	_ StateRepository = (*MemoryStateRepo)(nil)
	_ StateRepository = (*RedisStateRepo)(nil)
	_ StateRepository = (*MySQLStateRepo)(nil)
)
