package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// Stage is a step of playlist assembly.
type Stage int

const (
	StageResolveUser Stage = iota + 1
	StageCreateContainer
	StageAttachTracks
)

func (s Stage) String() string {
	switch s {
	case StageResolveUser:
		return "resolve_user"
	case StageCreateContainer:
		return "create_playlist"
	case StageAttachTracks:
		return "attach_tracks"
	default:
		return "unknown"
	}
}

func (s Stage) sentinel() error {
	switch s {
	case StageResolveUser:
		return shared.ErrProfileResolution
	case StageCreateContainer:
		return shared.ErrPlaylistCreate
	default:
		return shared.ErrTrackAttach
	}
}

// PlaylistError reports the stage at which assembly stopped.
//
// When the failure is at [StageAttachTracks] the playlist already exists and PlaylistID names it.
type PlaylistError struct {
	Stage      Stage
	PlaylistID string
	Err        error
}

func (e *PlaylistError) Error() string {
	if e.PlaylistID != "" {
		return fmt.Sprintf("%v (playlist %s): %v", e.Stage.sentinel(), e.PlaylistID, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Stage.sentinel(), e.Err)
}

func (e *PlaylistError) Unwrap() []error {
	return []error{e.Stage.sentinel(), e.Err}
}

// Status returns the upstream HTTP status behind the failure, or 0.
func (e *PlaylistError) Status() int {
	return shared.UpstreamStatus(e.Err)
}

// StageFunc is called before each assembly stage starts.
type StageFunc func(stage Stage)

// Assembler creates a playlist and attaches tracks in three sequential calls.
//
// There is no rollback: a playlist created before a failed attach is left in place.
type Assembler struct {
	catalog services.PlaylistWriter
	logger  *log.Logger
}

// NewAssembler creates an assembler over catalog.
func NewAssembler(catalog services.PlaylistWriter, logger *log.Logger) *Assembler {
	return &Assembler{catalog: catalog, logger: orDiscard(logger)}
}

// CreatePlaylist resolves the credential's owner, creates a public playlist and attaches req.TrackIDs.
func (a *Assembler) CreatePlaylist(ctx context.Context, req models.PlaylistCreationRequest, credential string) (*models.PlaylistResult, error) {
	return a.CreatePlaylistWithProgress(ctx, req, credential, nil)
}

// CreatePlaylistWithProgress is [Assembler.CreatePlaylist] with a per-stage callback.
func (a *Assembler) CreatePlaylistWithProgress(ctx context.Context, req models.PlaylistCreationRequest, credential string, fn StageFunc) (*models.PlaylistResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: playlist title is required", shared.ErrInvalidInput)
	}
	if fn == nil {
		fn = func(Stage) {}
	}

	fn(StageResolveUser)
	profile, err := a.catalog.CurrentUser(ctx, credential)
	if err != nil {
		return nil, &PlaylistError{Stage: StageResolveUser, Err: err}
	}

	fn(StageCreateContainer)
	playlistID, err := a.catalog.CreatePlaylist(ctx, credential, profile.ID, title, req.Description)
	if err != nil {
		return nil, &PlaylistError{Stage: StageCreateContainer, Err: err}
	}
	a.logger.Debug("created playlist", "user", profile.ID, "playlist_id", playlistID)

	fn(StageAttachTracks)
	if _, err := a.catalog.AddTracks(ctx, credential, playlistID, req.TrackIDs); err != nil {
		a.logger.Warn("playlist left without tracks", "playlist_id", playlistID, "error", err)
		return nil, &PlaylistError{Stage: StageAttachTracks, PlaylistID: playlistID, Err: err}
	}

	return &models.PlaylistResult{
		PlaylistID:  playlistID,
		PlaylistURL: models.PlaylistURL(playlistID),
		TrackCount:  len(req.TrackIDs),
	}, nil
}
