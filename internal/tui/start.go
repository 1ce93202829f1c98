package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"targetwatch/config"
)

// Start runs the dashboard until the user quits. When configPath is set the
// dashboard follows edits to that file.
func Start(ctx context.Context, deps Deps, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := New(ctx, deps)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(d *config.Dashboard, err error) {
				p.Send(configReloadedMsg{dashboard: d, err: err})
			})
			if err != nil {
				slog.Warn("config watch disabled", "error", err)
			}
		}()
	}

	_, err = p.Run()
	return err
}
