// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/ui/chat"
	"github.com/jeranaias/aria-tui/internal/ui/styles"
)

// runTUI starts the full-screen chat UI.
func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	opts := chat.Options{
		Config: a.cfg,
		Client: a.newClient(),
		Logger: a.logger,
		Theme:  styles.NewTheme(a.cfg.UI.Theme),
	}

	if store, err := a.openStore(); err != nil {
		a.logger.Warn("conversation archive unavailable", zap.Error(err))
	} else if store != nil {
		opts.Store = store
	}

	if path := a.configFile(); path != "" {
		watcher, err := config.NewWatcher(path, config.DefaultDebounce)
		if err != nil {
			a.logger.Warn("config hot reload disabled", zap.String("path", path), zap.Error(err))
		} else {
			defer watcher.Close()
			opts.Watcher = watcher
		}
	}

	a.logger.Info("starting chat UI", zap.String("backend", a.cfg.API.BaseURL))

	p := tea.NewProgram(chat.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
