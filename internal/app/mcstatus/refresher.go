package mcstatus

import (
	"context"
	"sync"
	"time"

	"github.com/haveachin/mcstatus/pkg/event"
	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultRefreshSchedule = "@every 30s"

// StatusResolver is implemented by *Resolver.
type StatusResolver interface {
	Status(ctx context.Context, addr string) (ServerStatus, error)
}

// Outcome is the result of refreshing a single endpoint.
// Status is nil if the endpoint could not be resolved.
type Outcome struct {
	Endpoint  ServerEndpoint
	Status    *ServerStatus
	Err       error
	UpdatedAt time.Time
}

// Refresher periodically resolves the status of all configured endpoints
// and keeps the latest outcome of each of them.
type Refresher struct {
	Resolver StatusResolver
	Logger   *zap.Logger
	EventBus event.Bus
	// Schedule is a cron spec. Defaults to DefaultRefreshSchedule.
	Schedule string

	running atomic.Bool

	mu        sync.RWMutex
	endpoints []ServerEndpoint
	outcomes  map[string]Outcome
	cron      *cron.Cron
}

func NewRefresher(resolver StatusResolver, endpoints []ServerEndpoint, logger *zap.Logger, bus event.Bus) *Refresher {
	r := &Refresher{
		Resolver: resolver,
		Logger:   logger,
		EventBus: bus,
		outcomes: map[string]Outcome{},
	}
	r.SetEndpoints(endpoints)
	return r
}

// SetEndpoints replaces the set of refreshed endpoints. Outcomes of removed
// endpoints are dropped.
func (r *Refresher) SetEndpoints(endpoints []ServerEndpoint) {
	eps := make([]ServerEndpoint, len(endpoints))
	copy(eps, endpoints)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = eps

	if r.outcomes == nil {
		r.outcomes = map[string]Outcome{}
	}
	keep := map[string]bool{}
	for _, ep := range eps {
		keep[ep.Address] = true
	}
	for addr := range r.outcomes {
		if !keep[addr] {
			delete(r.outcomes, addr)
		}
	}
}

func (r *Refresher) Endpoints() []ServerEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eps := make([]ServerEndpoint, len(r.endpoints))
	copy(eps, r.endpoints)
	return eps
}

// Start refreshes all endpoints once and then on every tick of the schedule
// until ctx is done or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	schedule := r.Schedule
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		r.Trigger(ctx)
	}); err != nil {
		return err
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	go r.Trigger(ctx)
	c.Start()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	r.logger().Info("started status refresher",
		zap.String("schedule", schedule),
		zap.Int("endpoints", len(r.Endpoints())),
	)
	return nil
}

func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Trigger refreshes all endpoints unless a refresh is already running.
// It reports whether a refresh was run.
func (r *Refresher) Trigger(ctx context.Context) bool {
	_, ok := r.Refresh(ctx)
	return ok
}

// Refresh resolves all endpoints concurrently and waits for every one of
// them to settle. A failing endpoint never affects the others.
// If a refresh is already running it returns immediately with false.
func (r *Refresher) Refresh(ctx context.Context) ([]Outcome, bool) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger().Debug("skipping refresh; previous refresh still running")
		return nil, false
	}
	defer r.running.Store(false)

	start := time.Now()
	endpoints := r.Endpoints()
	outcomes := make([]Outcome, len(endpoints))

	var wg sync.WaitGroup
	wg.Add(len(endpoints))
	for i, ep := range endpoints {
		go func(i int, ep ServerEndpoint) {
			defer wg.Done()
			outcomes[i] = r.refreshEndpoint(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	var errs error
	for _, o := range outcomes {
		errs = multierr.Append(errs, o.Err)
	}
	if errs != nil {
		r.logger().Warn("some endpoints could not be resolved",
			zap.Error(errs),
		)
	}

	r.store(outcomes)

	if r.EventBus != nil {
		r.EventBus.Push(RefreshCompletedEvent{
			Outcomes: outcomes,
			Duration: time.Since(start),
		}, RefreshCompletedEventTopic)
	}

	return outcomes, true
}

func (r *Refresher) refreshEndpoint(ctx context.Context, ep ServerEndpoint) Outcome {
	o := Outcome{
		Endpoint:  ep,
		UpdatedAt: time.Now(),
	}

	status, err := r.Resolver.Status(ctx, ep.Address)
	if err != nil {
		r.logger().Debug("failed to resolve endpoint",
			append(logEndpoint(ep), zap.Error(err))...,
		)
		o.Err = err
		return o
	}

	o.Status = &status
	return o
}

func (r *Refresher) store(outcomes []Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range outcomes {
		prev, hadPrev := r.outcomes[o.Endpoint.Address]
		if !r.isConfigured(o.Endpoint.Address) {
			continue
		}
		if o.Status != nil {
			status := o.Status.Clone()
			o.Status = &status
		}
		r.outcomes[o.Endpoint.Address] = o

		if hadPrev {
			r.pushTransition(prev, o)
		}
	}
}

func (r *Refresher) isConfigured(addr string) bool {
	for _, ep := range r.endpoints {
		if ep.Address == addr {
			return true
		}
	}
	return false
}

func (r *Refresher) pushTransition(prev, cur Outcome) {
	wasOnline := prev.Status != nil && prev.Status.Online
	isOnline := cur.Status != nil && cur.Status.Online
	if wasOnline == isOnline || r.EventBus == nil {
		return
	}

	var status ServerStatus
	if cur.Status != nil {
		status = cur.Status.Clone()
	}

	if isOnline {
		r.logger().Info("server came online", logEndpoint(cur.Endpoint)...)
		r.EventBus.Push(ServerOnlineEvent{
			Endpoint: cur.Endpoint,
			Status:   status,
		}, ServerOnlineEventTopic)
		return
	}

	r.logger().Info("server went offline", logEndpoint(cur.Endpoint)...)
	r.EventBus.Push(ServerOfflineEvent{
		Endpoint: cur.Endpoint,
		Status:   status,
	}, ServerOfflineEventTopic)
}

// Outcomes returns the latest outcome of every endpoint in configuration
// order. Endpoints that were never refreshed are omitted.
func (r *Refresher) Outcomes() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	outcomes := make([]Outcome, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		o, ok := r.outcomes[ep.Address]
		if !ok {
			continue
		}
		if o.Status != nil {
			status := o.Status.Clone()
			o.Status = &status
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (r *Refresher) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
