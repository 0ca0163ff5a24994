package mcstatus

import (
	"context"
	"sync"
	"time"

	"github.com/haveachin/mcstatus/internal/pkg/upstream"
	"github.com/haveachin/mcstatus/pkg/event"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL        = 30 * time.Second
	DefaultUpstreamTimeout = 5 * time.Second
)

// Resolver resolves the status of server addresses through the primary and
// legacy status APIs and caches the results.
//
// Concurrent cache misses for the same address are not de-duplicated;
// each of them queries the upstreams and the last one to finish is cached.
type Resolver struct {
	Primary PrimaryFetcher
	Legacy  LegacyFetcher
	// Cache defaults to an in-memory cache.
	Cache Cache
	// TTL is the time a cached status is served without querying
	// the upstreams. Defaults to DefaultCacheTTL.
	TTL time.Duration
	// UpstreamTimeout bounds every single upstream call.
	// Defaults to DefaultUpstreamTimeout.
	UpstreamTimeout time.Duration
	Logger          *zap.Logger
	// EventBus is optional.
	EventBus event.Bus
	// Now defaults to time.Now.
	Now func() time.Time

	initOnce sync.Once
}

// NewResolver returns a Resolver with an in-memory cache and default timings.
func NewResolver(primary PrimaryFetcher, legacy LegacyFetcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		Primary: primary,
		Legacy:  legacy,
		Cache:   NewMemoryCache(),
		Logger:  logger,
	}
}

// Status returns the status of the server at addr. A fresh cached status is
// returned without network access. If no upstream delivers usable data the
// last cached status is returned with Error set, regardless of its age.
// Only if nothing was ever cached for addr a *ResolutionError is returned.
func (r *Resolver) Status(ctx context.Context, addr string) (ServerStatus, error) {
	entry, cached := r.cachedEntry(ctx, addr)
	if cached && r.now().Sub(entry.Timestamp) < r.ttl() {
		status := entry.Data
		status.FromCache = true
		status.Error = false
		r.pushResolved(addr, status, ResolvedFromCache)
		return status, nil
	}

	status, res, err := r.refresh(ctx, addr)
	if err == nil {
		entry := CacheEntry{
			Data:      status.Clone(),
			Timestamp: r.now(),
		}
		if err := r.cache().Put(ctx, addr, entry); err != nil {
			r.logger().Warn("failed to cache status",
				logAddress(addr),
				zap.Error(err),
			)
		}

		from := ResolvedFromPrimary
		if res == resolutionLegacyFallback {
			from = ResolvedFromLegacy
		}
		r.pushResolved(addr, status, from)
		return status, nil
	}

	// Another request might have cached a status in the meantime.
	entry, cached = r.cachedEntry(ctx, addr)
	if cached {
		r.logger().Warn("serving stale status",
			logAddress(addr),
			zap.Time("cachedAt", entry.Timestamp),
			zap.Error(err),
		)
		status := entry.Data
		status.FromCache = true
		status.Error = true
		r.pushResolved(addr, status, ResolvedFromStale)
		return status, nil
	}

	rerr := &ResolutionError{
		Address: addr,
		Cause:   err,
	}
	if r.EventBus != nil {
		r.EventBus.Push(StatusFailedEvent{
			Address: addr,
			Err:     rerr,
		}, StatusFailedEventTopic)
	}
	return ServerStatus{}, rerr
}

// refresh runs the dual-source fetch protocol for addr.
func (r *Resolver) refresh(ctx context.Context, addr string) (ServerStatus, resolution, error) {
	primary := r.fetchPrimary(ctx, addr)
	if !primary.Ok() {
		r.logger().Debug("primary upstream failed; falling back to legacy upstream",
			logAddress(addr),
			zap.Stringer("state", primary.State),
			zap.Error(primary.Err),
		)
	}

	var legacy Result[upstream.LegacyStatus]
	if !primary.Ok() || *primary.Data.Online {
		legacy = r.fetchLegacy(ctx, addr)
		if !legacy.Ok() {
			r.logger().Debug("legacy upstream failed",
				logAddress(addr),
				zap.Stringer("state", legacy.State),
				zap.Error(legacy.Err),
			)
		}
	}

	status, res, err := resolve(primary, legacy)
	if err != nil {
		return ServerStatus{}, res, err
	}

	r.logger().Debug("resolved status",
		append(logStatus(status),
			logAddress(addr),
			zap.Stringer("resolution", res),
		)...,
	)
	return status, res, nil
}

func (r *Resolver) fetchPrimary(ctx context.Context, addr string) Result[upstream.PrimaryStatus] {
	ctx, cancel := context.WithTimeout(ctx, r.upstreamTimeout())
	defer cancel()
	return fetchPrimary(ctx, r.Primary, addr)
}

func (r *Resolver) fetchLegacy(ctx context.Context, addr string) Result[upstream.LegacyStatus] {
	ctx, cancel := context.WithTimeout(ctx, r.upstreamTimeout())
	defer cancel()
	return fetchLegacy(ctx, r.Legacy, addr)
}

func (r *Resolver) cachedEntry(ctx context.Context, addr string) (CacheEntry, bool) {
	entry, ok, err := r.cache().Get(ctx, addr)
	if err != nil {
		r.logger().Warn("failed to read cached status",
			logAddress(addr),
			zap.Error(err),
		)
		return CacheEntry{}, false
	}
	return entry, ok
}

func (r *Resolver) pushResolved(addr string, status ServerStatus, from ResolvedFrom) {
	if r.EventBus == nil {
		return
	}

	r.EventBus.Push(StatusResolvedEvent{
		Address:      addr,
		Status:       status.Clone(),
		ResolvedFrom: from,
	}, StatusResolvedEventTopic)
}

func (r *Resolver) cache() Cache {
	r.initOnce.Do(func() {
		if r.Cache == nil {
			r.Cache = NewMemoryCache()
		}
	})
	return r.Cache
}

func (r *Resolver) ttl() time.Duration {
	if r.TTL <= 0 {
		return DefaultCacheTTL
	}
	return r.TTL
}

func (r *Resolver) upstreamTimeout() time.Duration {
	if r.UpstreamTimeout <= 0 {
		return DefaultUpstreamTimeout
	}
	return r.UpstreamTimeout
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
