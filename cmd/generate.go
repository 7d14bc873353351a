package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/desertthunder/tunesmith/internal/ui"
	"github.com/urfave/cli/v3"
)

// Generate asks the model for recommendations, resolves them on Spotify and prints the outcome.
//
// With --create the found tracks are also added to a new playlist.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	count := cmd.Int("count")
	if count == 0 {
		count = r.config.Generator.DefaultCount
	}

	format := cmd.String("format")
	outputPath := cmd.String("output")
	if err := formatter.CheckFormat(format); err != nil {
		return err
	}

	credential, err := r.credential(cmd)
	if err != nil {
		return err
	}

	engine, err := r.prepare(cmd)
	if err != nil {
		return err
	}
	if r.completer == nil {
		return fmt.Errorf("%w: pass --openai-key, set OPENAI_API_KEY or credentials.openai.api_key", shared.ErrMissingCredentials)
	}

	r.logger.Debug("generating", "prompt", shared.Truncate(prompt, 60), "count", count)

	progress, stop := r.watch()
	result, err := engine.GenerateAndResolve(ctx, progress, models.RecommendationRequest{Prompt: prompt, Count: count}, credential)
	stop()
	if err != nil {
		return err
	}

	var playlist *models.PlaylistResult
	if cmd.Bool("create") {
		title := cmd.String("title")
		if title == "" {
			title = shared.Truncate(prompt, 100)
		}
		playlist, err = r.createPlaylist(ctx, engine, models.PlaylistCreationRequest{
			TrackIDs:    result.ResolvedTrackIDs,
			Title:       title,
			Description: cmd.String("description"),
			RunID:       result.RunID,
		}, credential)
		if err != nil {
			return err
		}
	}

	report := formatter.NewReport(result)
	if playlist != nil {
		report.PlaylistURL = playlist.PlaylistURL
	}

	switch {
	case outputPath != "":
		if format == "" {
			format = "json"
		}
		if err := formatter.WriteExport(report, format, outputPath); err != nil {
			return err
		}
		r.logger.Info("wrote export", "path", outputPath, "format", format)
		return r.writePlain("%s", ui.Generation(r.painter, result))
	case format != "":
		data, err := formatter.Render(report, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", strings.TrimRight(string(data), "\n"))
	}

	if err := r.writePlain("%s", ui.Generation(r.painter, result)); err != nil {
		return err
	}
	if playlist != nil {
		return r.writePlainln("%s", ui.Playlist(r.painter, playlist))
	}
	return nil
}

// Search resolves a single title and artist through the exact and lenient tiers.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	candidate := models.SongCandidate{
		Title:  strings.TrimSpace(cmd.String("title")),
		Artist: strings.TrimSpace(cmd.String("artist")),
	}

	credential, err := r.credential(cmd)
	if err != nil {
		return err
	}

	engine, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	outcome, err := engine.Search(ctx, candidate, credential)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(outcome, true)
	}

	if !outcome.Found {
		msg := fmt.Sprintf("✗ %s not found", outcome.Original)
		if last := outcome.LastError(); last != nil {
			msg += fmt.Sprintf(" (%v)", last)
		}
		return r.writePlain("%s\n", r.painter.Warn(msg))
	}
	return r.writePlain("%s %s → %s %s\n",
		r.painter.OK("✓"), outcome.Original, *outcome.Matched, r.painter.Help(fmt.Sprintf("[%s] %s", outcome.Tier, outcome.TrackID)))
}

// createPlaylist runs assembly with progress output, printing how far it got on failure.
func (r *Runner) createPlaylist(ctx context.Context, engine tasks.Engine, req models.PlaylistCreationRequest, credential string) (*models.PlaylistResult, error) {
	progress, stop := r.watch()
	res, err := engine.CreatePlaylist(ctx, progress, req, credential)
	stop()
	if err != nil {
		fmt.Fprintln(r.progress, ui.PlaylistFailure(r.painter, err))
		return nil, err
	}
	return res, nil
}
