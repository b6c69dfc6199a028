// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aria-tui/internal/config"
)

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
		Long: `Configuration is read from ~/.aria/config.toml (or config.json), then
a .env file, then ARIA_* environment variables, then command-line flags.`,
	}
	cmd.AddCommand(
		a.newConfigShowCommand(),
		a.newConfigGetCommand(),
		a.newConfigPathCommand(),
		a.newConfigInitCommand(),
	)
	return cmd
}

func (a *app) newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(a.out, a.cfg.String())
		},
	}
}

func (a *app) newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one value, e.g. api.base_url or ui.bot_name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "upstream.api_key" {
				return fmt.Errorf("refusing to print upstream.api_key")
			}
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return err
			}
			if value == nil {
				fmt.Fprintln(a.out, "(unset)")
				return nil
			}
			fmt.Fprintln(a.out, value)
			return nil
		},
	}
}

func (a *app) newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := a.configFile(); path != "" {
				fmt.Fprintln(a.out, path)
				return nil
			}
			path, err := config.ConfigPathTOML()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, path, infoStyle.Render("(not created yet)"))
			return nil
		},
	}
}

func (a *app) newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Wrote "+path))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
