// Command warband runs and inspects campaigns with custom troop trees.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/warband/internal/catalog"
	"github.com/talgya/warband/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "warband",
		Short:        "Custom troop trees for player clans and kingdoms",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	root.AddCommand(simulateCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, installs the logger and loads content.
func setup() (*config.Config, *catalog.Catalog, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	var cat *catalog.Catalog
	if cfg.Catalog != "" {
		cat, err = catalog.Load(cfg.Catalog)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, nil, err
	}
	slog.Info("content loaded",
		"source", sourceName(cfg.Catalog),
		"troops", len(cat.Troops()),
		"cultures", len(cat.Cultures()),
	)
	return cfg, cat, nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
