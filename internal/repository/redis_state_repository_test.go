package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestRedisStateRepo_MissingKeyYieldsSeed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(DefaultStateKey).RedisNil()

	st, err := NewRedisStateRepo(client, "").Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, st.Movies, 3)
	assert.Empty(t, st.Tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStateRepo_Load(t *testing.T) {
	client, mock := redismock.NewClientMock()
	stored := model.AggregateState{
		Users:   []model.User{{ID: 1, Username: "alice"}},
		Tickets: []model.Ticket{{ID: 4, UserID: 1, ShowtimeID: 1, SeatRow: 2, SeatCol: 2}},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet("test:state").SetVal(string(data))

	st, err := NewRedisStateRepo(client, "test:state").Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, stored.Tickets, st.Tickets)
	assert.Equal(t, uint64(4), st.Sequences.LastTicketID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStateRepo_CorruptValue(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("test:state").SetVal("garbage")

	_, err := NewRedisStateRepo(client, "test:state").Load(context.Background())

	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestRedisStateRepo_Save(t *testing.T) {
	client, mock := redismock.NewClientMock()
	st := model.AggregateState{Users: []model.User{{ID: 1, Username: "alice"}}}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	mock.ExpectSet("test:state", data, 0).SetVal("OK")

	err = NewRedisStateRepo(client, "test:state").Save(context.Background(), st)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStateRepo_SaveError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	st := model.AggregateState{}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	boom := errors.New("connection reset")
	mock.ExpectSet("test:state", data, 0).SetErr(boom)

	err = NewRedisStateRepo(client, "test:state").Save(context.Background(), st)

	assert.ErrorIs(t, err, boom)
}
