// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/logging"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Command annotations read by the pre-run hook.
const (
	// annotationSkipConfig marks commands that must work with a broken config.
	annotationSkipConfig = "aria/skip-config"
	// annotationLogStderr sends logs to stderr instead of the log file.
	annotationLogStderr = "aria/log-stderr"
)

// app holds the state shared by every command.
type app struct {
	info BuildInfo

	// Flags
	configPath string
	apiURL     string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs the root command and returns the process exit code.
func Execute(info BuildInfo) int {
	root := NewRootCommand(info)
	if err := root.ExecuteContext(context.Background()); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info, logger: logging.Nop()}

	root := &cobra.Command{
		Use:   "aria",
		Short: "Aria - a terminal chat client",
		Long: `Aria is a terminal chat client for a single /chat endpoint.

Run without arguments to start the interactive chat UI. Messages are sent
as GET <api.base_url>/chat?q=<text> and the reply body is shown as-is.`,
		Version:           info.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runTUI,
	}
	root.SetVersionTemplate(versionLine(info) + "\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.aria/config.toml)")
	flags.StringVar(&a.apiURL, "api-url", "", "chat backend base URL (overrides api.base_url)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.newAskCommand(),
		a.newReplCommand(),
		a.newServeCommand(),
		a.newHistoryCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// preRun loads the configuration and builds the logger.
func (a *app) preRun(cmd *cobra.Command, args []string) error {
	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	if cmd.Annotations[annotationSkipConfig] == "true" {
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level}
	if cmd.Annotations[annotationLogStderr] != "true" {
		file, err := cfg.LogFile()
		if err != nil {
			return err
		}
		opts.File = file
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// loadConfig reads the config file and applies the flag overrides.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.apiURL != "" || a.logLevel != "" {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	config.SetGlobal(cfg)
	return cfg, nil
}

// configFile returns the file the configuration was read from, or "" when
// only defaults are in effect.
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	for _, pathFn := range []func() (string, error){config.ConfigPathTOML, config.ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// exitError carries an exit code for failures that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
