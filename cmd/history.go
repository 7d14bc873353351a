package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/ui"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireHistory() (*repositories.RunRepository, error) {
	runs, err := r.history()
	if err != nil {
		return nil, err
	}
	if runs == nil {
		return nil, fmt.Errorf("%w: database.path is empty, history is disabled", shared.ErrInvalidConfig)
	}
	return runs, nil
}

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	runs, err := r.requireHistory()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if q := cmd.String("search"); q != "" {
		criteria["prompt"] = q
	}
	if cmd.IsSet("with-playlist") {
		criteria["has_playlist"] = cmd.Bool("with-playlist")
	}

	list, err := runs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		reports := make([]*formatter.Report, len(list))
		for i, run := range list {
			reports[i] = formatter.RunReport(run)
		}
		return r.writeJSON(reports, true)
	}
	return r.writePlain("%s\n", strings.TrimRight(ui.History(r.painter, list), "\n"))
}

// HistoryShow renders one recorded run in the requested format.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	runs, err := r.requireHistory()
	if err != nil {
		return err
	}

	run, err := runs.Get(id)
	if err != nil {
		return err
	}

	data, err := formatter.Render(formatter.RunReport(run), cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", strings.TrimRight(string(data), "\n"))
}

// HistoryDelete removes a run from the listing.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	runs, err := r.requireHistory()
	if err != nil {
		return err
	}
	if err := runs.Delete(id); err != nil {
		return err
	}
	r.logger.Info("deleted run", "id", id)
	return nil
}
