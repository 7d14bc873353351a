package models

import "fmt"

const playlistURLFormat = "https://open.spotify.com/playlist/%s"

// PlaylistCreationRequest is the input to playlist assembly.
//
// TrackIDs are submitted as given, in order, without deduplication.
type PlaylistCreationRequest struct {
	TrackIDs    []string `json:"track_ids"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	RunID       string   `json:"run_id,omitempty"` // history entry to link the playlist to
}

// PlaylistResult identifies a created playlist.
type PlaylistResult struct {
	PlaylistID  string `json:"playlist_id"`
	PlaylistURL string `json:"playlist_url"`
	TrackCount  int    `json:"track_count"`
}

// PlaylistURL returns the public web link for a playlist id.
func PlaylistURL(id string) string {
	return fmt.Sprintf(playlistURLFormat, id)
}

// Profile identifies the catalog account a credential belongs to.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
