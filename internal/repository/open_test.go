package repository

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	client, _ := redismock.NewClientMock()

	tests := []struct {
		name    string
		driver  string
		b       Backends
		want    interface{}
		wantErr bool
	}{
		{name: "file", driver: DriverFile, b: Backends{FilePath: "state.json"}, want: &FileStateRepo{}},
		{name: "default is file", driver: "", b: Backends{FilePath: "state.json"}, want: &FileStateRepo{}},
		{name: "file without path", driver: DriverFile, wantErr: true},
		{name: "memory", driver: DriverMemory, want: &MemoryStateRepo{}},
		{name: "redis", driver: DriverRedis, b: Backends{Redis: client}, want: &RedisStateRepo{}},
		{name: "redis without client", driver: DriverRedis, wantErr: true},
		{name: "mysql without db", driver: DriverMySQL, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, err := Open(tt.driver, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, repo)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open("postgres", Backends{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestBulkInsert(t *testing.T) {
	t.Parallel()

	q := bulkInsert("INSERT INTO t (a, b) VALUES ", 2, 3, " ON DUPLICATE KEY UPDATE a = VALUES(a)")
	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?),(?, ?),(?, ?) ON DUPLICATE KEY UPDATE a = VALUES(a)", q)
}
