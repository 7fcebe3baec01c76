// cmd/archetypes/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"archetype-resolver/internal/app"
	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "archetypes",
		Short:        "Resolve building construction archetypes from the archetype database",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")

	rootCmd.AddCommand(resolveCmd(&configPath))
	rootCmd.AddCommand(ageClassesCmd(&configPath))
	rootCmd.AddCommand(tableCmd(&configPath))
	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(graphCmd(&configPath))
	rootCmd.AddCommand(cacheCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	// stdout carries command output
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
	return cfg, nil
}

// openApp loads the configuration and builds the factory it names.
func openApp(ctx context.Context, path string) (*app.App, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Warn("log output unavailable, using stderr", map[string]interface{}{"error": err.Error()})
	}
	return app.New(ctx, cfg, log.WithFields(map[string]interface{}{"service": "archetypes-cli"}))
}

func cliLogger(cfg *config.Config) logger.Logger {
	log, _ := app.NewLogger(cfg.Logging)
	return log
}
