package cmd

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/internal/pkg/config"
	"github.com/haveachin/mcstatus/internal/plugin/api"
	"github.com/haveachin/mcstatus/internal/plugin/prometheus"
	"github.com/haveachin/mcstatus/internal/plugin/webhook"
	"github.com/haveachin/mcstatus/pkg/event"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	files   embed.FS
	version string

	configPath  = "config.yml"
	workingDir  = "."
	environment = "prod"
	logEncoder  = "console"

	logger        *zap.Logger
	pluginManager mcstatus.PluginManager

	mu        sync.Mutex
	refresher *mcstatus.Refresher

	rootCmd = &cobra.Command{
		Use:   "mcstatus",
		Short: "Starts the mcstatus server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(environment)
			if err != nil {
				return err
			}
			defer logger.Sync()

			data, cfg, err := readConfig()
			if err != nil {
				return err
			}
			defer cfg.Close()

			appCfg, err := loadAppConfig(data)
			if err != nil {
				return err
			}

			resolver, closeCache, err := newResolver(appCfg, logger)
			if err != nil {
				return err
			}
			defer closeCache()

			eventBus := event.NewInternalBus()
			defer eventBus.DetachAllRecipients()
			resolver.EventBus = eventBus

			mu.Lock()
			refresher = mcstatus.NewRefresher(resolver, appCfg.Servers, logger, eventBus)
			refresher.Schedule = appCfg.Refresh.Schedule
			mu.Unlock()

			pluginManager = mcstatus.PluginManager{
				Resolver:  resolver,
				Refresher: refresher,
				Logger:    logger,
				EventBus:  eventBus,
			}
			pluginManager.RegisterPlugin(&api.Plugin{})
			pluginManager.RegisterPlugin(&prometheus.Plugin{})
			pluginManager.RegisterPlugin(&webhook.Plugin{})

			logger.Debug("loading plugins")
			pluginManager.LoadPlugins(data)
			logger.Debug("enabling plugins")
			if err := pluginManager.EnablePlugins(); err != nil {
				logger.Error("failed to enable plugins", zap.Error(err))
			}
			defer pluginManager.DisablePlugins()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			if err := refresher.Start(ctx); err != nil {
				return err
			}
			defer refresher.Stop()

			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
)

func envString(name string, defVal string) string {
	envString := os.Getenv(name)
	if envString == "" {
		return defVal
	}

	return envString
}

func init() {
	envVarPrefix := "MCSTATUS_"
	workingDir = envString(envVarPrefix+"WORKING_DIR", workingDir)
	rootCmd.PersistentFlags().StringVarP(&workingDir, "working-dir", "w", workingDir, "set the working directory")
	environment = envString(envVarPrefix+"ENVIRONMENT", environment)
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", environment, "set the deployment environment")
	logEncoder = envString(envVarPrefix+"LOG_ENCODER", logEncoder)
	rootCmd.PersistentFlags().StringVarP(&logEncoder, "log-encoder", "l", logEncoder, "set the log encoder")
	configPath = envString(envVarPrefix+"CONFIG", configPath)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "path of the config file")

	rootCmd.AddCommand(licenseCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(queryCmd)
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case "nop":
		return zap.NewNop(), nil
	case "dev":
		return zap.NewDevelopment()
	case "prod":
		cfg := zap.NewProductionConfig()
		cfg.Encoding = logEncoder
		if logEncoder == "console" {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unsupported environment %q", env)
	}
}

// readConfig changes into the working directory, writes the default config
// on first start and reads the merged config.
func readConfig() (map[string]any, *config.Config, error) {
	if err := os.Chdir(workingDir); err != nil {
		return nil, nil, err
	}

	logger.Info("loading config",
		zap.String("config", configPath),
	)

	if _, err := os.Stat(configPath); err != nil && errors.Is(err, os.ErrNotExist) {
		if err := safeWriteFromEmbeddedFS("configs", "."); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.New(configPath, onConfigChange, logger)
	if err != nil {
		return nil, nil, err
	}

	data, err := cfg.Read()
	if err != nil {
		cfg.Close()
		return nil, nil, err
	}

	return data, cfg, nil
}

// Execute executes the root command.
func Execute(fs embed.FS, v string) error {
	files = fs
	version = v
	return rootCmd.Execute()
}

func safeWriteFromEmbeddedFS(embedPath, sysPath string) error {
	entries, err := files.ReadDir(embedPath)
	if err != nil {
		return err
	}

	for _, e := range entries {
		ePath := fmt.Sprintf("%s/%s", embedPath, e.Name())
		sPath := filepath.Join(sysPath, e.Name())

		if _, err := os.Stat(sPath); err == nil || !os.IsNotExist(err) {
			continue
		}

		if e.IsDir() {
			if err := os.Mkdir(sPath, 0755); err != nil {
				return err
			}

			if err := safeWriteFromEmbeddedFS(ePath, sPath); err != nil {
				return err
			}
			continue
		}

		bb, err := files.ReadFile(ePath)
		if err != nil {
			return err
		}

		if err := os.WriteFile(sPath, bb, 0644); err != nil {
			return err
		}
	}

	return nil
}

func onConfigChange(data map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	appCfg, err := loadAppConfig(data)
	if err != nil {
		logger.Error("failed to load config",
			zap.Error(err),
		)
		return
	}

	if refresher != nil {
		logger.Debug("reloading servers",
			zap.Int("servers", len(appCfg.Servers)),
		)
		refresher.SetEndpoints(appCfg.Servers)
		go refresher.Trigger(context.Background())
	}

	logger.Debug("reloading plugins")
	if err := pluginManager.ReloadPlugins(data); err != nil {
		logger.Error("failed to reload plugins",
			zap.Error(err),
		)
	}
}
