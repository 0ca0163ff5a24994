package webhook

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/internal/pkg/config"
	"github.com/haveachin/mcstatus/pkg/event"
	"github.com/haveachin/mcstatus/pkg/webhook"
	"github.com/imdario/mergo"
	"go.uber.org/zap"
)

const defaultDialTimeout = 5 * time.Second

type PluginConfig struct {
	Webhooks map[string]webhookConfig `mapstructure:"webhooks"`
	Defaults struct {
		Webhook webhookConfig `mapstructure:"webhook"`
	} `mapstructure:"defaults"`
}

type webhookConfig struct {
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
	URL         string        `mapstructure:"url"`
	Events      []string      `mapstructure:"events"`
	// Servers limits the webhook to these endpoint addresses.
	// An empty list matches all endpoints.
	Servers []string `mapstructure:"servers"`
}

type boundWebhook struct {
	webhook.Webhook
	servers map[string]bool
}

func (w boundWebhook) matches(addr string) bool {
	return len(w.servers) == 0 || w.servers[addr]
}

func (cfg PluginConfig) loadWebhooks() ([]boundWebhook, error) {
	whks := make([]boundWebhook, 0, len(cfg.Webhooks))
	for id, whCfg := range cfg.Webhooks {
		if err := mergo.Merge(&whCfg, cfg.Defaults.Webhook); err != nil {
			return nil, err
		}

		if whCfg.DialTimeout <= 0 {
			whCfg.DialTimeout = defaultDialTimeout
		}

		servers := map[string]bool{}
		for _, addr := range whCfg.Servers {
			servers[addr] = true
		}

		whks = append(whks, boundWebhook{
			Webhook: newWebhook(id, whCfg),
			servers: servers,
		})
	}
	return whks, nil
}

func newWebhook(id string, cfg webhookConfig) webhook.Webhook {
	return webhook.Webhook{
		ID: id,
		HTTPClient: &http.Client{
			Timeout: cfg.DialTimeout,
		},
		URL:           cfg.URL,
		AllowedTopics: cfg.Events,
	}
}

type Plugin struct {
	Config   PluginConfig
	logger   *zap.Logger
	eventBus event.Bus
	eventID  string

	mu   sync.RWMutex
	whks []boundWebhook
}

func (p *Plugin) Name() string {
	return "Webhook"
}

func (p *Plugin) Version() string {
	return "internal"
}

func (p *Plugin) Load(cfg map[string]any) error {
	var pluginCfg PluginConfig
	if err := config.Unmarshal(cfg, &pluginCfg); err != nil {
		return err
	}

	if len(pluginCfg.Webhooks) == 0 {
		p.mu.Lock()
		p.Config = pluginCfg
		p.whks = nil
		p.mu.Unlock()
		return mcstatus.ErrPluginViaConfigDisabled
	}

	whks, err := pluginCfg.loadWebhooks()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.Config = pluginCfg
	p.whks = whks
	p.mu.Unlock()

	return nil
}

func (p *Plugin) Reload(cfg map[string]any) error {
	return p.Load(cfg)
}

func (p *Plugin) Enable(api mcstatus.PluginAPI) error {
	p.logger = api.Logger()
	p.eventBus = api.EventBus()

	p.eventID, _ = p.eventBus.AttachHandlerFunc("", p.handleEvent,
		mcstatus.ServerOnlineEventTopic,
		mcstatus.ServerOfflineEventTopic,
	)
	return nil
}

func (p *Plugin) Disable() error {
	p.eventBus.DetachRecipient(p.eventID)
	return nil
}

type endpointData struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

type statusData struct {
	Online        bool   `json:"online"`
	PlayersOnline int    `json:"playersOnline"`
	PlayersMax    int    `json:"playersMax"`
	Version       string `json:"version"`
	Motd          string `json:"motd"`
}

type eventData struct {
	Server endpointData `json:"server"`
	Status statusData   `json:"status"`
}

func newEventData(ep mcstatus.ServerEndpoint, s mcstatus.ServerStatus) eventData {
	motd := ""
	if len(s.Motd.Clean) > 0 {
		motd = s.Motd.Clean[0]
	}

	return eventData{
		Server: endpointData{
			Name:     ep.Name,
			Address:  ep.Address,
			Category: ep.Category,
		},
		Status: statusData{
			Online:        s.Online,
			PlayersOnline: s.Players.Online,
			PlayersMax:    s.Players.Max,
			Version:       s.Version,
			Motd:          motd,
		},
	}
}

func (p *Plugin) handleEvent(e event.Event) {
	var data eventData
	switch d := e.Data.(type) {
	case mcstatus.ServerOnlineEvent:
		data = newEventData(d.Endpoint, d.Status)
	case mcstatus.ServerOfflineEvent:
		data = newEventData(d.Endpoint, d.Status)
	default:
		return
	}

	p.dispatchEvent(e, data)
}

func (p *Plugin) dispatchEvent(e event.Event, data eventData) {
	eventLog := webhook.EventLog{
		Topics:     e.Topics,
		OccurredAt: e.OccurredAt,
		Data:       data,
	}

	p.mu.RLock()
	whks := p.whks
	p.mu.RUnlock()

	for _, wh := range whks {
		if !wh.matches(data.Server.Address) {
			continue
		}

		go func(wh boundWebhook) {
			if err := wh.DispatchEvent(context.Background(), eventLog); err != nil && !errors.Is(err, webhook.ErrEventTopicNotAllowed) {
				p.logger.Error("failed to dispatch event",
					zap.Error(err),
					zap.String("webhookId", wh.ID),
				)
			}
		}(wh)
	}
}
