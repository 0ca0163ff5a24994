package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/df-mc/atomic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/internal/pkg/config"
	"go.uber.org/zap"
)

type ProxyProtocolConfig struct {
	Receive      bool     `mapstructure:"receive"`
	TrustedCIDRs []string `mapstructure:"trustedCIDRs"`
}

type PluginConfig struct {
	API struct {
		Enable            bool                `mapstructure:"enable"`
		Bind              string              `mapstructure:"bind"`
		AllowedOrigins    []string            `mapstructure:"allowedOrigins"`
		AllowedMethods    []string            `mapstructure:"allowedMethods"`
		AllowedHeaders    []string            `mapstructure:"allowedHeaders"`
		JWTSecret         string              `mapstructure:"jwtSecret"`
		AvatarURLTemplate string              `mapstructure:"avatarUrlTemplate"`
		ProxyProtocol     ProxyProtocolConfig `mapstructure:"proxyProtocol"`
	} `mapstructure:"api"`
	Lookup lookupConfig `mapstructure:"lookup"`
}

// refresher is implemented by *mcstatus.Refresher.
type refresher interface {
	Endpoints() []mcstatus.ServerEndpoint
	Outcomes() []mcstatus.Outcome
	Trigger(ctx context.Context) bool
}

type Plugin struct {
	Config    PluginConfig
	logger    *zap.Logger
	resolver  mcstatus.StatusResolver
	refresher refresher
	// live holds the config the handlers read on every request, so that
	// reloads apply without restarting the server.
	live *atomic.Value[PluginConfig]

	quit chan bool
}

func (p Plugin) Name() string {
	return "API"
}

func (p Plugin) Version() string {
	return "internal"
}

func (p *Plugin) Load(cfg map[string]any) error {
	pluginCfg := PluginConfig{}
	if err := config.Unmarshal(cfg, &pluginCfg); err != nil {
		return err
	}
	p.Config = pluginCfg

	if !p.Config.API.Enable {
		return mcstatus.ErrPluginViaConfigDisabled
	}

	return nil
}

// Reload applies cfg to the running plugin. Handlers pick up the new
// config immediately; the server is only restarted when the bind changes.
// Disabling the API via config stops the server.
func (p *Plugin) Reload(cfg map[string]any) error {
	var pluginCfg PluginConfig
	if err := config.Unmarshal(cfg, &pluginCfg); err != nil {
		return err
	}

	if !pluginCfg.API.Enable {
		p.stopAPIServer()
		p.Config = pluginCfg
		return mcstatus.ErrPluginViaConfigDisabled
	}

	p.liveConfig().Store(pluginCfg)
	if p.quit != nil && pluginCfg.API.Bind == p.Config.API.Bind {
		p.Config = pluginCfg
		return nil
	}

	p.stopAPIServer()
	p.Config = pluginCfg
	p.runAPIServer()
	return nil
}

func (p *Plugin) Enable(api mcstatus.PluginAPI) error {
	p.logger = api.Logger()
	p.resolver = api.Resolver()
	p.refresher = api.Refresher()
	p.liveConfig().Store(p.Config)

	p.runAPIServer()
	return nil
}

func (p *Plugin) Disable() error {
	p.stopAPIServer()
	return nil
}

func (p *Plugin) runAPIServer() {
	p.quit = make(chan bool)
	go p.startAPIServer(p.quit)
}

// stopAPIServer blocks until the server goroutine received the quit signal.
func (p *Plugin) stopAPIServer() {
	if p.quit == nil {
		return
	}
	p.quit <- true
	p.quit = nil
}

func (p *Plugin) liveConfig() *atomic.Value[PluginConfig] {
	if p.live == nil {
		p.live = atomic.NewValue(p.Config)
	}
	return p.live
}

func (p Plugin) listen() (net.Listener, error) {
	l, err := net.Listen("tcp", p.Config.API.Bind)
	if err != nil {
		return nil, err
	}

	if !p.Config.API.ProxyProtocol.Receive {
		return l, nil
	}

	ppl, err := newProxyProtocolListener(l, p.Config.API.ProxyProtocol.TrustedCIDRs)
	if err != nil {
		l.Close()
		return nil, err
	}
	return ppl, nil
}

func (p Plugin) startAPIServer(quit <-chan bool) {
	l, err := p.listen()
	if err != nil {
		p.logger.Error("failed to listen",
			zap.Error(err),
			zap.String("bind", p.Config.API.Bind),
		)
		<-quit
		return
	}

	srv := http.Server{
		Handler:           p.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("failed to start server", zap.Error(err))
			return
		}
	}()

	p.logger.Info("started api server",
		zap.String("bind", p.Config.API.Bind),
	)

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func (p *Plugin) router() http.Handler {
	live := p.liveConfig()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.Config.API.AllowedOrigins,
		AllowedMethods:   p.Config.API.AllowedMethods,
		AllowedHeaders:   p.Config.API.AllowedHeaders,
		AllowCredentials: false,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/servers", func(r chi.Router) {
			r.Get("/", getServersHandler(p.refresher))
			r.With(bearerAuth(func() string {
				return live.Load().API.JWTSecret
			})).Post("/refresh", refreshServersHandler(p.refresher, p.logger))
		})

		r.Route("/status/{address}", func(r chi.Router) {
			lookup := func() lookupConfig {
				return live.Load().Lookup
			}
			r.Get("/", getStatusHandler(p.resolver, lookup))
			r.Get("/motd", getMotdHandler(p.resolver, lookup))
		})

		r.Get("/avatars/{username}", getAvatarHandler(func() string {
			return live.Load().API.AvatarURLTemplate
		}))
	})
	return r
}
