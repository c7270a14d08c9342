// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/retux/internal/config"
	"github.com/ManuGH/retux/internal/validate"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create configuration files",
	}
	cmd.AddCommand(newConfigValidateCmd(opts), newConfigInitCmd(), newConfigShowCmd(opts))
	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(opts.configPath).LoadUnvalidated()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := config.Validate(cfg); err != nil {
				var ve validate.ValidationError
				if errors.As(err, &ve) {
					for _, e := range ve.Errors() {
						fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
					}
					return fmt.Errorf("configuration invalid: %d problem(s)", len(ve.Errors()))
				}
				return err
			}
			fmt.Fprintln(out, "configuration OK")
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write a config file with the defaults",
		Long:  "Write a config file with the defaults. The format follows the extension (.yaml, .yml or .toml).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteFile(args[0], config.Default(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(opts.configPath).LoadUnvalidated()
			if err != nil {
				return err
			}
			data, err := config.Marshal(config.Format(format), cfg.Redacted())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format: yaml or toml")
	return cmd
}
