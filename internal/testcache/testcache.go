package testcache

import (
	"os"
	"strconv"

	c "github.com/tamasbrandstadter/bank-ledger-api/internal/cache"
)

// OpenConnection connects to the redis named by TEST_REDIS_HOST and
// TEST_REDIS_PORT, or returns an in-process cache when no host is set.
func OpenConnection() (*c.Redis, error) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		return c.NewLocal(), nil
	}

	port, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if err != nil {
		port = 6379
	}

	return c.NewConnection(c.Config{
		Host:       host,
		Pass:       os.Getenv("TEST_REDIS_PASSWORD"),
		Port:       port,
		MaxRetries: 1,
	})
}
