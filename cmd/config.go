package cmd

import (
	"errors"
	"time"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/internal/pkg/config"
	"github.com/haveachin/mcstatus/internal/pkg/storage"
	"github.com/haveachin/mcstatus/internal/pkg/upstream"
	"go.uber.org/zap"
)

type appConfig struct {
	Servers []mcstatus.ServerEndpoint `mapstructure:"servers"`
	Cache   struct {
		TTL   time.Duration `mapstructure:"ttl"`
		Redis struct {
			Enable              bool `mapstructure:"enable"`
			storage.RedisConfig `mapstructure:",squash"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Upstreams struct {
		upstream.ClientConfig `mapstructure:",squash"`
		Primary               struct {
			URL string `mapstructure:"url"`
		} `mapstructure:"primary"`
		Legacy struct {
			URL string `mapstructure:"url"`
		} `mapstructure:"legacy"`
	} `mapstructure:"upstreams"`
	Refresh struct {
		Schedule string `mapstructure:"schedule"`
	} `mapstructure:"refresh"`
}

func loadAppConfig(data map[string]any) (appConfig, error) {
	var cfg appConfig
	if err := config.Unmarshal(data, &cfg); err != nil {
		return appConfig{}, err
	}

	if cfg.Upstreams.Legacy.URL == "" {
		cfg.Upstreams.Legacy.URL = upstream.DefaultLegacyURL
	}

	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = mcstatus.DefaultRefreshSchedule
	}

	for i, ep := range cfg.Servers {
		addr, err := mcstatus.NormalizeAddress(ep.Address)
		if err != nil {
			return appConfig{}, err
		}
		cfg.Servers[i].Address = addr
	}

	return cfg, nil
}

// newResolver builds the resolver and the cache it uses. closeFn releases
// the cache backend.
func newResolver(cfg appConfig, logger *zap.Logger) (r *mcstatus.Resolver, closeFn func() error, err error) {
	client, err := upstream.NewHTTPClient(cfg.Upstreams.ClientConfig)
	if err != nil {
		return nil, nil, err
	}

	primary, err := upstream.NewPrimaryClient(cfg.Upstreams.Primary.URL, client, cfg.Upstreams.ClientConfig)
	if err != nil {
		return nil, nil, err
	}
	legacy := upstream.NewLegacyClient(cfg.Upstreams.Legacy.URL, client, cfg.Upstreams.ClientConfig)

	r = mcstatus.NewResolver(primary, legacy, logger)
	r.TTL = cfg.Cache.TTL
	r.UpstreamTimeout = cfg.Upstreams.Timeout
	closeFn = func() error { return nil }

	if cfg.Cache.Redis.Enable {
		if cfg.Cache.Redis.URI == "" {
			return nil, nil, errors.New("redis cache enabled without uri")
		}

		cache, err := storage.NewRedisCache(cfg.Cache.Redis.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		r.Cache = cache
		closeFn = cache.Close
	}

	return r, closeFn, nil
}
