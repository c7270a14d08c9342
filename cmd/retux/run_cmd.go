// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/retux/internal/config"
	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/session"
	"github.com/ManuGH/retux/internal/telemetry"
	"github.com/ManuGH/retux/internal/version"
	"github.com/ManuGH/retux/pkg/bot"
	"github.com/ManuGH/retux/pkg/events"
	"github.com/ManuGH/retux/pkg/gateway"
	"github.com/ManuGH/retux/pkg/rest"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and run until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loader, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, loader)
		},
	}
}

func run(ctx context.Context, cfg config.AppConfig, loader *config.Loader) error {
	logger := xlog.WithComponent("main")
	redacted := cfg.Redacted()
	logger.Info().
		Str("version", version.Version).
		Str("token", redacted.Token).
		Str("intents", cfg.Intents).
		Str("session_backend", cfg.Session.Backend).
		Msg("starting retux")

	holder := config.NewHolder(cfg, loader)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Msg("config watcher unavailable, hot reload disabled")
	}
	defer holder.Stop()

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "retux",
		ServiceVersion: version.Version,
		Environment:    "production",
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("telemetry shutdown error")
		}
	}()

	store, err := session.Open(ctx, sessionConfig(cfg))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	b, err := buildBot(ctx, cfg, store)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

// buildBot assembles the bot from configuration. Without a configured
// gateway URL it asks Discord for one and falls back to the default.
func buildBot(ctx context.Context, cfg config.AppConfig, store gateway.SessionStore) (*bot.Bot, error) {
	intents, err := cfg.ParsedIntents()
	if err != nil {
		return nil, err
	}
	logger := xlog.WithComponent("main")

	restOpts := []rest.Option{
		rest.WithBaseURL(cfg.API.URL),
		rest.WithTimeout(cfg.API.Timeout),
		rest.WithMaxRetries(cfg.API.Retries),
	}

	gatewayURL := cfg.Gateway.URL
	if gatewayURL == "" {
		lookupCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
		info, err := rest.New(cfg.Token, restOpts...).GetGatewayBot(lookupCtx)
		cancel()
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("gateway lookup failed, using the default URL")
		default:
			gatewayURL = info.URL
			logger.Info().
				Str("url", info.URL).
				Int("recommended_shards", info.Shards).
				Int("sessions_remaining", info.SessionStartLimit.Remaining).
				Msg("gateway lookup")
		}
	}

	var opts []bot.Option
	opts = append(opts,
		bot.WithRESTOptions(restOpts...),
		bot.WithGatewayOptions(
			gateway.WithURL(gatewayURL),
			gateway.WithVersion(cfg.Gateway.Version),
			gateway.WithCompression(cfg.Gateway.Compress),
			gateway.WithShard(cfg.Gateway.ShardID, cfg.Gateway.ShardCount),
			gateway.WithLargeThreshold(cfg.Gateway.LargeThreshold),
			gateway.WithSessionStore(store),
		),
	)
	if cfg.Ops.Listen != "" {
		opts = append(opts, bot.WithOpsServer(cfg.Ops.Listen))
	}

	b := bot.New(cfg.Token, intents, opts...)
	if err := bot.Handle(b, func(_ context.Context, ev *events.Ready) error {
		logger.Info().
			Str("user", ev.User.Username).
			Int("guilds", len(ev.Guilds)).
			Int("api_version", ev.Version()).
			Msg("ready")
		return nil
	}); err != nil {
		return nil, err
	}
	return b, nil
}
