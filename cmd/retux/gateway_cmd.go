// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ManuGH/retux/pkg/rest"
)

func newGatewayCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Query Discord's gateway endpoints",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the gateway URL, recommended shards and session start limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			client := rest.New(cfg.Token,
				rest.WithBaseURL(cfg.API.URL),
				rest.WithTimeout(cfg.API.Timeout),
				rest.WithMaxRetries(cfg.API.Retries),
			)
			info, err := client.GetGatewayBot(cmd.Context())
			if err != nil {
				return fmt.Errorf("get gateway: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "url\t%s\n", info.URL)
			fmt.Fprintf(w, "shards\t%d\n", info.Shards)
			fmt.Fprintf(w, "sessions remaining\t%d/%d\n", info.SessionStartLimit.Remaining, info.SessionStartLimit.Total)
			fmt.Fprintf(w, "reset after\t%dms\n", info.SessionStartLimit.ResetAfter)
			fmt.Fprintf(w, "max concurrency\t%d\n", info.SessionStartLimit.MaxConcurrency)
			return w.Flush()
		},
	})
	return cmd
}
