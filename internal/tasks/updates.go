package tasks

import (
	"fmt"

	"github.com/desertthunder/tunesmith/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Generate Phase = iota
	SearchTracks
	ResolveUser
	CreatePlaylist
	AttachTracks
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case Generate:
		return "generate"
	case SearchTracks:
		return "search_tracks"
	case ResolveUser:
		return "resolve_user"
	case CreatePlaylist:
		return "create_playlist"
	case AttachTracks:
		return "attach_tracks"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

func generateUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Generate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting %d recommendations...", count),
	}
}

func generatedUpdate(candidates []models.SongCandidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Generate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Received %d candidates", len(candidates)),
		Data:    candidates,
	}
}

func searchTracksUpdate(step, total int, o *models.TrackSearchOutcome) ProgressUpdate {
	if o == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Searching for tracks on Spotify...",
		}
	}

	mark := "✗"
	if o.Found {
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, o.Original),
		Data:    *o,
	}
}

func stageUpdate(stage Stage, count int) ProgressUpdate {
	switch stage {
	case StageResolveUser:
		return ProgressUpdate{Phase: ResolveUser, Step: 1, Total: 3, Message: "Resolving Spotify profile..."}
	case StageCreateContainer:
		return ProgressUpdate{Phase: CreatePlaylist, Step: 2, Total: 3, Message: "Creating playlist..."}
	default:
		return ProgressUpdate{Phase: AttachTracks, Step: 3, Total: 3, Message: fmt.Sprintf("Adding %d tracks...", count)}
	}
}

func createdPlaylistUpdate(res *models.PlaylistResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AttachTracks,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Playlist created: %s (%d tracks)", res.PlaylistURL, res.TrackCount),
		Data:    res,
	}
}

func recordedRunUpdate(runID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded run %s", runID),
	}
}
