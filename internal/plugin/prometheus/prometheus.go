package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/internal/pkg/config"
	"github.com/haveachin/mcstatus/pkg/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PluginConfig struct {
	Prometheus struct {
		Enable bool   `mapstructure:"enable"`
		Bind   string `mapstructure:"bind"`
	} `mapstructure:"prometheus"`
}

type metrics struct {
	serverOnline   *prometheus.GaugeVec
	playersOnline  *prometheus.GaugeVec
	resolutions    *prometheus.CounterVec
	refreshSeconds prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) metrics {
	factory := promauto.With(reg)
	return metrics{
		serverOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mcstatus_server_online",
			Help: "Whether a configured server is online (1) or not (0)",
		}, []string{"name", "address", "category"}),
		playersOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mcstatus_players_online",
			Help: "The number of players online per configured server",
		}, []string{"name", "address", "category"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcstatus_resolutions_total",
			Help: "The total number of status resolutions per result",
		}, []string{"result"}),
		refreshSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcstatus_refresh_duration_seconds",
			Help:    "The time it took to refresh all configured servers",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type Plugin struct {
	Config   PluginConfig
	logger   *zap.Logger
	eventBus event.Bus
	eventID  string
	registry *prometheus.Registry
	metrics  metrics
	server   *http.Server
}

func (p Plugin) Name() string {
	return "Prometheus"
}

func (p Plugin) Version() string {
	return "internal"
}

func (p *Plugin) Load(cfg map[string]any) error {
	var pluginCfg PluginConfig
	if err := config.Unmarshal(cfg, &pluginCfg); err != nil {
		return err
	}

	if !pluginCfg.Prometheus.Enable {
		return mcstatus.ErrPluginViaConfigDisabled
	}

	if pluginCfg.Prometheus.Bind == "" {
		return errors.New("prometheus bind empty")
	}

	p.Config = pluginCfg
	return nil
}

// Reload keeps the running listener; a changed bind requires a restart.
func (p *Plugin) Reload(cfg map[string]any) error {
	var pluginCfg PluginConfig
	if err := config.Unmarshal(cfg, &pluginCfg); err != nil {
		return err
	}

	if pluginCfg.Prometheus.Bind != p.Config.Prometheus.Bind {
		p.logger.Warn("prometheus bind changed; restart to apply",
			zap.String("bind", pluginCfg.Prometheus.Bind),
		)
	}
	return nil
}

func (p *Plugin) Enable(api mcstatus.PluginAPI) error {
	p.logger = api.Logger()
	p.eventBus = api.EventBus()
	p.init()

	p.eventID, _ = p.eventBus.AttachHandlerFunc("", p.handleEvent,
		mcstatus.StatusResolvedEventTopic,
		mcstatus.StatusFailedEventTopic,
		mcstatus.RefreshCompletedEventTopic,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	p.server = &http.Server{
		Addr:              p.Config.Prometheus.Bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		p.logger.Info("starting prometheus listener",
			zap.String("bind", p.Config.Prometheus.Bind),
		)

		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("failed to start prometheus listener", zap.Error(err))
		}
	}()
	return nil
}

func (p Plugin) Disable() error {
	p.eventBus.DetachRecipient(p.eventID)

	if p.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

func (p *Plugin) init() {
	if p.registry != nil {
		return
	}
	p.registry = prometheus.NewRegistry()
	p.metrics = newMetrics(p.registry)
}

func (p Plugin) handleEvent(e event.Event) {
	switch data := e.Data.(type) {
	case mcstatus.StatusResolvedEvent:
		p.metrics.resolutions.WithLabelValues(string(data.ResolvedFrom)).Inc()
	case mcstatus.StatusFailedEvent:
		p.metrics.resolutions.WithLabelValues("failed").Inc()
	case mcstatus.RefreshCompletedEvent:
		p.metrics.refreshSeconds.Observe(data.Duration.Seconds())
		for _, o := range data.Outcomes {
			labels := prometheus.Labels{
				"name":     o.Endpoint.Name,
				"address":  o.Endpoint.Address,
				"category": o.Endpoint.Category,
			}

			online, players := 0.0, 0.0
			if o.Status != nil && o.Status.Online {
				online = 1
				players = float64(o.Status.Players.Online)
			}
			p.metrics.serverOnline.With(labels).Set(online)
			p.metrics.playersOnline.With(labels).Set(players)
		}
	}
}
