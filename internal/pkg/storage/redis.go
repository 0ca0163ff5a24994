package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v9"
	"github.com/golang/snappy"
	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	jsoniter "github.com/json-iterator/go"
)

const DefaultKeyPrefix = "mcstatus:status:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errAddressMismatch = errors.New("cached address does not match")

type RedisConfig struct {
	URI       string `mapstructure:"uri"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// redisClient is the subset of *redis.Client that the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisCache is a mcstatus.Cache that persists entries in Redis.
// Keys never expire since stale entries are served when both upstreams fail.
type RedisCache struct {
	cli          redisClient
	prefix       string
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	return newRedisCache(redis.NewClient(opts), cfg.KeyPrefix, opts.ReadTimeout, opts.WriteTimeout), nil
}

func newRedisCache(cli redisClient, prefix string, readTimeout, writeTimeout time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &RedisCache{
		cli:          cli,
		prefix:       prefix,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// record is the stored value. The address guards against hash collisions.
type record struct {
	Address string              `json:"address"`
	Entry   mcstatus.CacheEntry `json:"entry"`
}

func (c RedisCache) key(addr string) string {
	sum := xxhash.Sum64String(addr)
	bb := []byte{
		byte(sum >> 56), byte(sum >> 48), byte(sum >> 40), byte(sum >> 32),
		byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum),
	}
	return c.prefix + hex.EncodeToString(bb)
}

func (c RedisCache) Get(ctx context.Context, addr string) (mcstatus.CacheEntry, bool, error) {
	ctx, cancel := withTimeout(ctx, c.readTimeout)
	defer cancel()

	bb, err := c.cli.Get(ctx, c.key(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return mcstatus.CacheEntry{}, false, nil
		}
		return mcstatus.CacheEntry{}, false, err
	}

	decoded, err := snappy.Decode(nil, bb)
	if err != nil {
		return mcstatus.CacheEntry{}, false, fmt.Errorf("decompress snappy: %w", err)
	}

	var r record
	if err := json.Unmarshal(decoded, &r); err != nil {
		return mcstatus.CacheEntry{}, false, err
	}

	if r.Address != addr {
		return mcstatus.CacheEntry{}, false, fmt.Errorf("%w: %q", errAddressMismatch, r.Address)
	}

	return r.Entry, true, nil
}

func (c RedisCache) Put(ctx context.Context, addr string, entry mcstatus.CacheEntry) error {
	bb, err := json.Marshal(record{
		Address: addr,
		Entry:   entry,
	})
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, c.writeTimeout)
	defer cancel()
	return c.cli.Set(ctx, c.key(addr), snappy.Encode(nil, bb), 0).Err()
}

func (c RedisCache) Close() error {
	return c.cli.Close()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
