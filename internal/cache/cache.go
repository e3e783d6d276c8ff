package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

const (
	balancePrefix = "balance:"
	localSize     = 1000
	BalanceTTL    = 10 * time.Minute
)

type Config struct {
	Host       string
	Pass       string
	Port       int
	MaxRetries uint
}

type Redis struct {
	Client   *redis.Ring
	Balances *cache.Cache
}

func NewConnection(cfg Config) (*Redis, error) {
	log.Info("connecting to redis")

	r := redis.NewRing(&redis.RingOptions{
		Addrs: map[string]string{
			"server1": fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		},
		HeartbeatFrequency: 10 * time.Second,
		Password:           cfg.Pass,
		MaxRetries:         3,
		MaxRetryBackoff:    3 * time.Second,
		ReadTimeout:        1 * time.Second,
		WriteTimeout:       1 * time.Second,
		PoolSize:           10,
		MinIdleConns:       1,
	})

	log.Info("verifying redis connection")

	err := retry.Do(
		func() error {
			return r.Ping(context.Background()).Err()
		},
		retry.Attempts(attempts(cfg.MaxRetries)),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("redis ping attempt %d failed", n+1)
		}),
	)
	if err != nil {
		_ = r.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	log.Info("verified redis connection")

	b := cache.New(&cache.Options{
		Redis:      r,
		LocalCache: cache.NewTinyLFU(localSize, time.Minute),
	})

	log.Info("created balances cache")

	return &Redis{
		Client:   r,
		Balances: b,
	}, nil
}

// NewLocal returns a cache that lives in process memory only.
func NewLocal() *Redis {
	return &Redis{
		Balances: cache.New(&cache.Options{
			LocalCache: cache.NewTinyLFU(localSize, time.Minute),
		}),
	}
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func BalanceKey(accountID string) string {
	return balancePrefix + accountID
}

// EntryPosted drops the cached balance view of the account the entry was
// posted to.
func (r *Redis) EntryPosted(accountID string, _ account.Entry) {
	if err := r.Balances.Delete(context.Background(), BalanceKey(accountID)); err != nil {
		log.WithError(err).Warnf("failed to evict cached balance for account id %s", accountID)
	}
}

func attempts(n uint) uint {
	if n == 0 {
		return 1
	}
	return n
}
