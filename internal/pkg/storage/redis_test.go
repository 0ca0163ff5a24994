package storage

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/haveachin/mcstatus/internal/app/mcstatus"
)

type fakeRedis struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values: map[string][]byte{},
		ttls:   map[string]time.Duration{},
	}
}

func (r *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return redis.NewStringResult("", r.err)
	}

	v, ok := r.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (r *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return redis.NewStatusResult("", r.err)
	}

	r.values[key] = append([]byte(nil), value.([]byte)...)
	r.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (r *fakeRedis) Close() error {
	return nil
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	cli := newFakeRedis()
	c := newRedisCache(cli, "", time.Second, time.Second)

	if _, ok, err := c.Get(ctx, "play.example.com"); ok || err != nil {
		t.Fatalf("got ok=%v err=%v for missing key", ok, err)
	}

	icon := "data:icon"
	ping := 42
	entry := mcstatus.CacheEntry{
		Data: mcstatus.ServerStatus{
			Online: true,
			Icon:   &icon,
			Players: mcstatus.Players{
				Online: 2,
				Max:    20,
				List:   []string{"Alice", "Bob"},
			},
			Motd: mcstatus.Motd{
				Raw:    []string{"§aHello"},
				Clean:  []string{"Hello"},
				HTML:   []string{"<span>Hello</span>"},
				Origin: mcstatus.LegacySource,
			},
			Debug: mcstatus.Debug{
				Ping: &ping,
			},
			Plugins: []string{},
		},
		Timestamp: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := c.Put(ctx, "play.example.com", entry); err != nil {
		t.Fatal(err)
	}

	for key, ttl := range cli.ttls {
		if ttl != 0 {
			t.Errorf("key %q has expiration %v; want none", key, ttl)
		}
		if len(key) != len(DefaultKeyPrefix)+16 {
			t.Errorf("got key %q", key)
		}
	}

	got, ok, err := c.Get(ctx, "play.example.com")
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}

	if !got.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("got timestamp %v; want %v", got.Timestamp, entry.Timestamp)
	}
	got.Timestamp = entry.Timestamp

	if !reflect.DeepEqual(got, entry) {
		t.Errorf("\n got %+v\nwant %+v", got, entry)
	}
}

func TestRedisCache_Errors(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("connection refused")

	t.Run("Backend", func(t *testing.T) {
		cli := newFakeRedis()
		cli.err = errDown
		c := newRedisCache(cli, "", 0, 0)

		if err := c.Put(ctx, "a", mcstatus.CacheEntry{}); !errors.Is(err, errDown) {
			t.Errorf("got put error %v", err)
		}
		if _, _, err := c.Get(ctx, "a"); !errors.Is(err, errDown) {
			t.Errorf("got get error %v", err)
		}
	})

	t.Run("Corrupt", func(t *testing.T) {
		cli := newFakeRedis()
		c := newRedisCache(cli, "", 0, 0)
		cli.values[c.key("a")] = []byte("not snappy")

		if _, ok, err := c.Get(ctx, "a"); err == nil || ok {
			t.Errorf("got ok=%v err=%v; want error", ok, err)
		}
	})

	t.Run("Collision", func(t *testing.T) {
		cli := newFakeRedis()
		c := newRedisCache(cli, "", 0, 0)
		if err := c.Put(ctx, "a", mcstatus.CacheEntry{}); err != nil {
			t.Fatal(err)
		}
		cli.values[c.key("b")] = cli.values[c.key("a")]

		if _, ok, err := c.Get(ctx, "b"); !errors.Is(err, errAddressMismatch) || ok {
			t.Errorf("got ok=%v err=%v; want %v", ok, err, errAddressMismatch)
		}
	})
}

func TestNewRedisCache_InvalidURI(t *testing.T) {
	if _, err := NewRedisCache(RedisConfig{URI: "http://localhost"}); err == nil {
		t.Error("expected error")
	}
}
