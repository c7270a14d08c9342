// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/retux/internal/config"
	"github.com/ManuGH/retux/internal/persistence/sqlite"
	"github.com/ManuGH/retux/internal/session"
	"github.com/ManuGH/retux/pkg/gateway"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the persisted gateway session",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored session of the configured shard",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}
				store, err := session.Open(cmd.Context(), sessionConfig(cfg))
				if err != nil {
					return err
				}
				defer store.Close()

				key := gateway.SessionKey(cfg.Gateway.ShardID, cfg.Gateway.ShardCount)
				st, ok, err := store.Load(cmd.Context(), key)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintf(out, "%s: no resumable session\n", key)
					return nil
				}
				fmt.Fprintf(out, "%s: session %s seq %d resume %s\n", key, maskID(st.ID), st.Sequence, st.ResumeURL)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the stored session so the next run identifies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := opts.load()
				if err != nil {
					return err
				}
				store, err := session.Open(cmd.Context(), sessionConfig(cfg))
				if err != nil {
					return err
				}
				defer store.Close()

				key := gateway.SessionKey(cfg.Gateway.ShardID, cfg.Gateway.ShardCount)
				if err := store.Clear(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared\n", key)
				return nil
			},
		},
		newSessionVerifyCmd(opts),
	)
	return cmd
}

func newSessionVerifyCmd(opts *rootOptions) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the sqlite session database for corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			if !strings.EqualFold(cfg.Session.Backend, session.BackendSQLite) {
				return fmt.Errorf("session verify needs the sqlite backend, configured: %s", cfg.Session.Backend)
			}
			path := filepath.Join(cfg.Session.Dir, "sessions.sqlite")
			issues, err := sqlite.VerifyIntegrity(cmd.Context(), path, full)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintln(cmd.OutOrStdout(), "  "+issue)
				}
				return fmt.Errorf("%s: %d integrity problem(s)", path, len(issues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "run integrity_check instead of quick_check")
	return cmd
}

func sessionConfig(cfg config.AppConfig) session.Config {
	return session.Config{
		Backend:       cfg.Session.Backend,
		Dir:           cfg.Session.Dir,
		RedisAddr:     cfg.Session.RedisAddr,
		RedisPassword: cfg.Session.RedisPassword,
		RedisDB:       cfg.Session.RedisDB,
		TTL:           cfg.Session.TTL,
	}
}

func maskID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[:4] + "***"
}
