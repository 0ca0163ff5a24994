package mcstatus

import (
	"errors"
	"sync"

	"github.com/haveachin/mcstatus/pkg/event"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrPluginViaConfigDisabled = errors.New("plugin was disabled via config")

type PluginAPI interface {
	EventBus() event.Bus
	Logger() *zap.Logger
	Resolver() StatusResolver
	Refresher() *Refresher
}

type Plugin interface {
	Name() string
	Version() string
	// Load reads the plugin's config. It returns ErrPluginViaConfigDisabled
	// if the plugin should not be enabled.
	Load(cfg map[string]any) error
	Reload(cfg map[string]any) error
	Enable(PluginAPI) error
	Disable() error
}

type pluginManagerAPI struct {
	pm *PluginManager
}

func (api pluginManagerAPI) EventBus() event.Bus {
	return api.pm.EventBus
}

func (api pluginManagerAPI) Logger() *zap.Logger {
	return api.pm.Logger
}

func (api pluginManagerAPI) Resolver() StatusResolver {
	return api.pm.Resolver
}

func (api pluginManagerAPI) Refresher() *Refresher {
	return api.pm.Refresher
}

type PluginManager struct {
	Resolver  StatusResolver
	Refresher *Refresher
	Logger    *zap.Logger
	EventBus  event.Bus

	mu      sync.Mutex
	plugins []Plugin
	loaded  []Plugin
}

func (pm *PluginManager) RegisterPlugin(p Plugin) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.plugins = append(pm.plugins, p)
}

// LoadPlugins loads the config of every registered plugin.
// Plugins that fail to load or are disabled via config are skipped.
func (pm *PluginManager) LoadPlugins(cfg map[string]any) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.loaded = nil
	for _, p := range pm.plugins {
		logger := pm.Logger.With(logPlugin(p)...)
		if err := p.Load(cfg); err != nil {
			if errors.Is(err, ErrPluginViaConfigDisabled) {
				logger.Info("plugin disabled via config")
			} else {
				logger.Error("failed to load plugin", zap.Error(err))
			}
			continue
		}
		pm.loaded = append(pm.loaded, p)
	}
}

func (pm *PluginManager) EnablePlugins() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.EventBus == nil {
		pm.EventBus = event.NewInternalBus()
	}
	api := pluginManagerAPI{pm: pm}

	var result error
	for _, p := range pm.loaded {
		pm.Logger.Info("enabling plugin", logPlugin(p)...)
		if err := p.Enable(api); err != nil {
			result = multierr.Append(result, err)
		}
	}
	return result
}

func (pm *PluginManager) ReloadPlugins(cfg map[string]any) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var result error
	for _, p := range pm.loaded {
		if err := p.Reload(cfg); err != nil && !errors.Is(err, ErrPluginViaConfigDisabled) {
			result = multierr.Append(result, err)
		}
	}
	return result
}

func (pm *PluginManager) DisablePlugins() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var result error
	for _, p := range pm.loaded {
		if err := p.Disable(); err != nil {
			result = multierr.Append(result, err)
		}
	}
	return result
}
