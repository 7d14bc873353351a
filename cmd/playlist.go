package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/ui"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates a playlist from track ids given as arguments, or from the found tracks of a recorded run.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	trackIDs := []string{}
	for _, arg := range cmd.Args().Slice() {
		for id := range strings.SplitSeq(arg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				trackIDs = append(trackIDs, id)
			}
		}
	}

	runID := cmd.String("run")
	title := cmd.String("title")

	if runID != "" && len(trackIDs) == 0 {
		runs, err := r.history()
		if err != nil {
			return err
		}
		if runs == nil {
			return fmt.Errorf("%w: --run needs database.path to be set", shared.ErrInvalidConfig)
		}
		run, err := runs.Get(runID)
		if err != nil {
			return err
		}
		for _, t := range run.Tracks() {
			if t.Found {
				trackIDs = append(trackIDs, t.TrackID)
			}
		}
		if title == "" {
			title = shared.Truncate(run.Prompt(), 100)
		}
		r.logger.Debug("using tracks from run", "run_id", runID, "tracks", len(trackIDs))
	}

	if title == "" {
		return fmt.Errorf("%w: --title", shared.ErrMissingArgument)
	}

	credential, err := r.credential(cmd)
	if err != nil {
		return err
	}

	engine, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	res, err := r.createPlaylist(ctx, engine, models.PlaylistCreationRequest{
		TrackIDs:    trackIDs,
		Title:       title,
		Description: cmd.String("description"),
		RunID:       runID,
	}, credential)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}
	return r.writePlain("%s", ui.Playlist(r.painter, res))
}
