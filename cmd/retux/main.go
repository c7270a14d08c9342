// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command retux runs a Discord bot and inspects its configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuGH/retux/internal/config"
	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/version"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "retux",
		Short:         "A Discord bot runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("RETUX_CONFIG"), "path to a YAML or TOML config file")

	root.AddCommand(
		newRunCmd(opts),
		newConfigCmd(opts),
		newGatewayCmd(opts),
		newSessionCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads configuration and configures the global logger from it.
func (o *rootOptions) load() (config.AppConfig, *config.Loader, error) {
	loader := config.NewLoader(o.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	xlog.Configure(xlog.Config{Level: cfg.Log.Level, Service: "retux", Version: version.Version})
	return cfg, loader, nil
}

func main() {
	xlog.Configure(xlog.Config{Level: "info", Service: "retux", Version: version.Version})
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
