package repository

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Supported values for the STATE_DRIVER setting.
const (
	DriverFile   = "file"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Backends carries the handles a driver may need.  Only the fields used by
// the selected driver have to be set.
type Backends struct {
	FilePath string
	DB       *sql.DB
	Redis    *redis.Client
	RedisKey string
}

// Open returns the state repository for driver.
func Open(driver string, b Backends) (StateRepository, error) {
	switch driver {
	case DriverFile, "":
		if b.FilePath == "" {
			return nil, fmt.Errorf("file driver: state file path is empty")
		}
		return NewFileStateRepo(b.FilePath), nil
	case DriverMySQL:
		if b.DB == nil {
			return nil, fmt.Errorf("mysql driver: no database connection")
		}
		return NewMySQLStateRepo(b.DB), nil
	case DriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("redis driver: no redis client")
		}
		return NewRedisStateRepo(b.Redis, b.RedisKey), nil
	case DriverMemory:
		return NewMemoryStateRepo(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
