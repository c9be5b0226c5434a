// Package redis implements the report cache on top of go-redis.  Completed
// comparison reports are large and immutable, so they cache well: reads go
// through Redis with a TTL, and concurrent fetches of the same report are
// collapsed through singleflight.
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/policylens/internal/config"
	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

const defaultReportTTL = 24 * time.Hour

// ReportCache is the Redis implementation of comparison.ReportCache.
type ReportCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	log    logging.Logger
	group  singleflight.Group
	once   sync.Once
}

// NewClient builds a go-redis client from platform configuration.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewReportCache builds the report cache.  The client is typically the one
// returned by NewClient but any go-redis client works.
func NewReportCache(client *goredis.Client, cfg config.RedisConfig, log logging.Logger) *ReportCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	ttl := cfg.ReportTTL
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "policylens"
	}
	return &ReportCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    log.Named("redis.reportcache"),
	}
}

func (c *ReportCache) key(id common.ID) string {
	return c.prefix + ":report:" + string(id)
}

// Get fetches a cached report.  A miss returns (nil, false, nil); concurrent
// gets for the same comparison share one round trip.
func (c *ReportCache) Get(ctx context.Context, comparisonID common.ID) (*domain.Report, bool, error) {
	key := c.key(comparisonID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			return nil, err
		}
		var rep domain.Report
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode cached report")
		}
		return &rep, nil
	})
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		if errors.IsCode(err, errors.ErrCodeSerialization) {
			// A corrupt entry behaves like a miss; drop it so the next
			// write repairs the key.
			c.log.Warn("dropping corrupt cache entry", logging.String("key", key), logging.Err(err))
			c.client.Del(ctx, key)
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "cache get")
	}
	return v.(*domain.Report), true, nil
}

// Set stores a report under the configured TTL.
func (c *ReportCache) Set(ctx context.Context, comparisonID common.ID, report *domain.Report) error {
	if report == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode report")
	}
	if err := c.client.Set(ctx, c.key(comparisonID), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set")
	}
	return nil
}

// Invalidate removes a cached report, typically when the comparison is
// deleted.  Missing keys are not an error.
func (c *ReportCache) Invalidate(ctx context.Context, comparisonID common.ID) error {
	if err := c.client.Del(ctx, c.key(comparisonID)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache invalidate")
	}
	return nil
}

// HealthCheck pings the Redis server.
func (c *ReportCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis health check failed")
	}
	return nil
}

// Close releases the underlying client.  Safe to call more than once.
func (c *ReportCache) Close() error {
	var err error
	c.once.Do(func() {
		err = c.client.Close()
	})
	return err
}
