package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/df-mc/atomic"
	"github.com/fsnotify/fsnotify"
	"github.com/imdario/mergo"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// Events are collected for this long before configs are reread.
const watchDebounce = 100 * time.Millisecond

type fileConfig struct {
	File  string `mapstructure:"file"`
	Watch bool   `mapstructure:"watch"`
}

type directoryConfig struct {
	Directory string `mapstructure:"directory"`
	Watch     bool   `mapstructure:"watch"`
}

type FileConfig struct {
	Directories []directoryConfig `mapstructure:"directories"`
	Files       []fileConfig      `mapstructure:"files"`
}

type fileProvider struct {
	FileConfig
	watcher   *atomic.Value[*fsnotify.Watcher]
	logger    *zap.Logger
	watchDirs []string
}

func newFileProvider(cfg FileConfig, logger *zap.Logger) *fileProvider {
	watchDirs := []string{}
	for _, dirCfg := range cfg.Directories {
		if dirCfg.Watch {
			watchDirs = append(watchDirs, dirCfg.Directory)
		}
	}

	for _, fileCfg := range cfg.Files {
		if fileCfg.Watch {
			watchDirs = append(watchDirs, fileCfg.File)
		}
	}

	return &fileProvider{
		FileConfig: cfg,
		watcher:    atomic.NewValue[*fsnotify.Watcher](nil),
		logger:     logger,
		watchDirs:  watchDirs,
	}
}

func (p *fileProvider) watching() bool {
	return len(p.watchDirs) > 0
}

func (p *fileProvider) watch(onChange func()) error {
	if p.watcher.Load() != nil {
		return errors.New("already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	p.watcher.Store(w)

	for _, dir := range p.watchDirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	tick := time.NewTicker(watchDebounce)
	defer tick.Stop()
	changed := false

	for {
		select {
		case <-tick.C:
			if !changed {
				continue
			}
			changed = false
			onChange()
		case e, ok := <-w.Events:
			if !ok {
				p.logger.Debug("closing file watcher",
					zap.String("cause", "watcher event channel closed"),
				)
				return nil
			}

			if e.Has(fsnotify.Remove) ||
				e.Has(fsnotify.Write) ||
				e.Has(fsnotify.Create) ||
				e.Has(fsnotify.Rename) {
				changed = true
			}
		case err, ok := <-w.Errors:
			if !ok {
				p.logger.Debug("closing file watcher",
					zap.String("cause", "watcher error channel closed"),
				)
				return nil
			}

			p.logger.Error("error while watching directory",
				zap.Error(err),
			)
		}
	}
}

func (p *fileProvider) close() error {
	if w := p.watcher.Load(); w != nil {
		return w.Close()
	}
	return nil
}

// read merges all configured directories and files. Unreadable sources are
// logged and skipped.
func (p *fileProvider) read() map[string]any {
	cfg := map[string]any{}
	for _, dirCfg := range p.Directories {
		if err := readConfigsFromDir(dirCfg.Directory, &cfg); err != nil {
			p.logger.Error("failed to read config from directory",
				zap.Error(err),
				zap.String("directory", dirCfg.Directory),
			)
		}
	}

	for _, fileCfg := range p.Files {
		data := map[string]any{}
		if err := ReadConfigFile(fileCfg.File, &data); err != nil {
			p.logger.Error("failed to read config from file",
				zap.Error(err),
				zap.String("file", fileCfg.File),
			)
			continue
		}

		if err := mergo.Merge(&cfg, data, mergo.WithOverride); err != nil {
			p.logger.Error("failed to merge config file",
				zap.Error(err),
				zap.String("file", fileCfg.File),
			)
		}
	}

	return cfg
}

func readConfigsFromDir(dir string, v *map[string]any) error {
	readConfig := func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		cfgData := map[string]any{}
		if err := ReadConfigFile(path, &cfgData); err != nil {
			return fmt.Errorf("could not read %s; %w", path, err)
		}

		return mergo.Merge(v, cfgData, mergo.WithOverride)
	}

	return filepath.Walk(dir, readConfig)
}

// ReadConfigFile decodes a JSON or YAML file into v depending on the
// file extension.
func ReadConfigFile(filename string, v any) error {
	bb, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	switch filepath.Ext(filename) {
	case ".json":
		return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(bb, v)
	case ".yml", ".yaml":
		return yaml.Unmarshal(bb, v)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFileType, filename)
}
