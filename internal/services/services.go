// package services implements the HTTP clients for the upstream APIs
//
// OpenAI (chat completions), Spotify (search, profile, playlists)
package services

import (
	"context"

	"github.com/desertthunder/tunesmith/internal/models"
)

// Service is implemented by every upstream client.
type Service interface {
	// Name returns the name of the service (e.g., "Spotify", "OpenAI")
	Name() string
}

// Completer produces a single text completion for a system instruction and a user message.
type Completer interface {
	Service
	Complete(ctx context.Context, system, user string) (string, error)
}

// Searcher looks up tracks in the catalog.
type Searcher interface {
	Service
	// SearchTracks runs query as a track search and returns at most limit items.
	SearchTracks(ctx context.Context, credential, query string, limit int) ([]models.MatchedTrack, error)
}

// PlaylistWriter creates playlists on behalf of the credential's owner.
type PlaylistWriter interface {
	Service
	CurrentUser(ctx context.Context, credential string) (*models.Profile, error)
	// CreatePlaylist creates a public playlist and returns its id.
	CreatePlaylist(ctx context.Context, credential, userID, name, description string) (string, error)
	AddTracks(ctx context.Context, credential, playlistID string, trackIDs []string) (string, error)
}

// Catalog is the full set of catalog operations.
type Catalog interface {
	Searcher
	PlaylistWriter
}

var (
	_ Completer = (*OpenAIService)(nil)
	_ Catalog   = (*SpotifyService)(nil)
)
