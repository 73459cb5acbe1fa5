package main

import (
	"context"
	"fmt"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/ui"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive recipe search.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	location := cmd.String("location")
	if location == "" && cmd.Bool("history") {
		if err := r.openHistory(ctx); err != nil {
			return err
		}
		recent, err := r.history.Recent(1)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			location = recent[0].QueryString
		}
	}

	ctrl := r.newController(fileLogger)
	defer ctrl.Close()
	if location != "" {
		if err := ctrl.Navigate(location); err != nil {
			return err
		}
	}

	detail := views.NewRecipeDetail(r.client, sess)
	defer detail.Close()

	model := ui.NewModel(ctx, ui.Options{
		Controller: ctrl,
		Catalog:    r.client,
		Detail:     detail,
		Session:    sess,
		Logger:     shared.WithLogger(fileLogger, "component", "tui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
