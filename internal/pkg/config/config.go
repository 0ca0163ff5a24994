package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/imdario/mergo"
	"go.uber.org/zap"
)

type providersConfig struct {
	File FileConfig `mapstructure:"file"`
}

type baseConfig struct {
	Providers providersConfig `mapstructure:"providers"`
}

// Config reads the base config file and merges the configs of all
// providers it references on top of it.
type Config struct {
	path     string
	onChange func(map[string]any)
	logger   *zap.Logger

	mu       sync.Mutex
	provider *fileProvider
}

// New reads the base config at path to set up its providers. onChange is
// called with the complete config every time a watched provider changes.
func New(path string, onChange func(map[string]any), logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := map[string]any{}
	if err := ReadConfigFile(path, &base); err != nil {
		return nil, err
	}

	var cfg baseConfig
	if err := Unmarshal(base, &cfg); err != nil {
		return nil, err
	}

	c := &Config{
		path:     path,
		onChange: onChange,
		logger:   logger,
	}
	c.provider = newFileProvider(cfg.Providers.File, logger)

	if onChange != nil && c.provider.watching() {
		go func() {
			if err := c.provider.watch(c.providerChanged); err != nil {
				logger.Error("failed while watching config provider",
					zap.Error(err),
				)
			}
		}()
	}

	return c, nil
}

// Read returns the base config merged with all provider configs.
// Provider values override base values.
func (c *Config) Read() (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := map[string]any{}
	if err := ReadConfigFile(c.path, &cfg); err != nil {
		return nil, err
	}

	data := c.provider.read()
	if err := mergo.Merge(&cfg, data, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge provider config: %w", err)
	}

	return cfg, nil
}

func (c *Config) providerChanged() {
	cfg, err := c.Read()
	if err != nil {
		c.logger.Error("failed to read config after change",
			zap.Error(err),
		)
		return
	}

	c.onChange(cfg)
}

func (c *Config) Close() error {
	if c.provider == nil {
		return errors.New("config not initialized")
	}
	return c.provider.close()
}
