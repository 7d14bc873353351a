package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesmith/internal/models"
)

// RunRecorderAdapter implements tasks.RunRecorder using RunRepository.
type RunRecorderAdapter struct {
	repo *RunRepository
}

// NewRunRecorderAdapter creates a new RunRecorderAdapter with the given repository
func NewRunRecorderAdapter(repo *RunRepository) *RunRecorderAdapter {
	return &RunRecorderAdapter{repo: repo}
}

// RecordGeneration stores the result as a new run and returns its id.
func (a *RunRecorderAdapter) RecordGeneration(ctx context.Context, requested int, result *models.GenerationResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	run := models.NewRun(0, result.Prompt, requested, result.Stats, models.RunTracksFromOutcomes(result.Outcomes))
	if err := a.repo.Create(run); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID(), nil
}

// RecordPlaylist links a created playlist to an existing run.
func (a *RunRecorderAdapter) RecordPlaylist(ctx context.Context, runID, playlistID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.repo.AttachPlaylist(runID, playlistID)
}
