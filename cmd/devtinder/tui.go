package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/session"
	"github.com/devtinder/devtinder/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	nav := &tui.Navigator{}
	a, err := newApp(nav, true)
	if err != nil {
		return err
	}
	defer a.close()

	// Converge the in-memory session with external cache changes (another
	// devtinder process logging in or out).
	watcher, err := session.WatchCache(a.store, a.logger)
	if err != nil {
		a.logger.Warn("session cache watch unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	model := tui.New(tui.Deps{
		Store:       a.store,
		Reconciler:  a.reconciler(),
		Auth:        a.auth,
		Profile:     a.profile,
		Feed:        a.feed,
		Requests:    a.requests,
		Connections: a.connections,
		Logger:      a.logger,
		Timeout:     a.cfg.API.Timeout.Duration(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	nav.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
