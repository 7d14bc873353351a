// package tasks implements recommendation, resolution and playlist assembly.
//
// The core abstraction is PlaylistEngine, which composes the generator, resolver and assembler.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/server layers.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// RunRecorder persists generation history. Implementations may be slow or fail; the engine only logs failures.
type RunRecorder interface {
	// RecordGeneration stores a completed generation and returns its run id.
	RecordGeneration(ctx context.Context, requested int, result *models.GenerationResult) (string, error)
	// RecordPlaylist links a created playlist to an existing run.
	RecordPlaylist(ctx context.Context, runID, playlistID string) error
}

// Engine defines the boundary operations.
type Engine interface {
	// GenerateAndResolve generates candidates for req and resolves each one against the catalog.
	GenerateAndResolve(ctx context.Context, progress chan<- ProgressUpdate, req models.RecommendationRequest, credential string) (*models.GenerationResult, error)

	// CreatePlaylist creates a playlist holding req.TrackIDs.
	CreatePlaylist(ctx context.Context, progress chan<- ProgressUpdate, req models.PlaylistCreationRequest, credential string) (*models.PlaylistResult, error)
}

// EngineOpts contains configuration for [PlaylistEngine].
type EngineOpts struct {
	Bounds   models.Bounds
	Resolver ResolverOpts
	Recorder RunRecorder // optional
	Logger   *log.Logger // optional
}

// PlaylistEngine implements [Engine].
type PlaylistEngine struct {
	generator *Generator
	resolver  *Resolver
	assembler *Assembler
	recorder  RunRecorder
	logger    *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(completer services.Completer, catalog services.Catalog, opts EngineOpts) *PlaylistEngine {
	logger := orDiscard(opts.Logger)
	return &PlaylistEngine{
		generator: NewGenerator(completer, opts.Bounds, shared.WithLogger(logger, "component", "generator")),
		resolver:  NewResolver(catalog, opts.Resolver, shared.WithLogger(logger, "component", "resolver")),
		assembler: NewAssembler(catalog, shared.WithLogger(logger, "component", "assembler")),
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// GenerateAndResolve runs the generator then the resolver.
//
// Generator errors are returned as-is. Zero found tracks is a successful result.
func (e *PlaylistEngine) GenerateAndResolve(ctx context.Context, progress chan<- ProgressUpdate, req models.RecommendationRequest, credential string) (*models.GenerationResult, error) {
	e.sendProgress(progress, generateUpdate(req.Count))

	candidates, err := e.generator.Generate(ctx, req.Prompt, req.Count)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, generatedUpdate(candidates))

	total := len(candidates)
	e.sendProgress(progress, searchTracksUpdate(0, total, nil))
	outcomes := e.resolver.ResolveWithProgress(ctx, candidates, credential, func(done, total int, o models.TrackSearchOutcome) {
		e.sendProgress(progress, searchTracksUpdate(done, total, &o))
	})

	result := &models.GenerationResult{
		Prompt:           req.Prompt,
		Candidates:       candidates,
		Outcomes:         outcomes,
		ResolvedTrackIDs: ResolvedTrackIDs(outcomes),
		Stats:            Stats(outcomes),
	}

	e.logger.Info("resolved recommendations",
		"requested", req.Count, "found", result.Stats.Found, "missing", result.Stats.Missing)

	if e.recorder != nil {
		runID, err := e.recorder.RecordGeneration(ctx, req.Count, result)
		if err != nil {
			e.logger.Warn("failed to record run", "error", err)
		} else {
			result.RunID = runID
			e.sendProgress(progress, recordedRunUpdate(runID))
		}
	}

	return result, nil
}

// CreatePlaylist runs the assembler, linking the playlist to req.RunID when set and a recorder is configured.
func (e *PlaylistEngine) CreatePlaylist(ctx context.Context, progress chan<- ProgressUpdate, req models.PlaylistCreationRequest, credential string) (*models.PlaylistResult, error) {
	res, err := e.assembler.CreatePlaylistWithProgress(ctx, req, credential, func(s Stage) {
		e.sendProgress(progress, stageUpdate(s, len(req.TrackIDs)))
	})
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, createdPlaylistUpdate(res))

	if e.recorder != nil && req.RunID != "" {
		if err := e.recorder.RecordPlaylist(ctx, req.RunID, res.PlaylistID); err != nil {
			e.logger.Warn("failed to link playlist to run", "run_id", req.RunID, "error", err)
		}
	}

	return res, nil
}

// Search resolves a single (title, artist) pair through both tiers.
func (e *PlaylistEngine) Search(ctx context.Context, c models.SongCandidate, credential string) (models.TrackSearchOutcome, error) {
	if c.Title == "" || c.Artist == "" {
		return models.TrackSearchOutcome{}, fmt.Errorf("%w: title and artist are required", shared.ErrInvalidInput)
	}
	return e.resolver.ResolveOne(ctx, c, credential), nil
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

var _ Engine = (*PlaylistEngine)(nil)
