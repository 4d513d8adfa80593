package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/desertthunder/staffdir/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal directory.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	q, err := r.queryFromFlags(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/staffdir-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	model := ui.NewModel(repos, q, r.config.Storage.WarnPercent)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
