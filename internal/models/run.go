package models

import (
	"fmt"
	"strings"
	"time"
)

// RunTrack is one candidate row of a recorded [Run], in candidate order.
type RunTrack struct {
	Position      int    `json:"position"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Found         bool   `json:"found"`
	TrackID       string `json:"track_id,omitempty"`
	MatchedTitle  string `json:"matched_title,omitempty"`
	MatchedArtist string `json:"matched_artist,omitempty"`
}

// RunTracksFromOutcomes converts resolver outcomes into [RunTrack] rows.
func RunTracksFromOutcomes(outcomes []TrackSearchOutcome) []RunTrack {
	tracks := make([]RunTrack, len(outcomes))
	for i, o := range outcomes {
		tracks[i] = RunTrack{
			Position: i,
			Title:    o.Original.Title,
			Artist:   o.Original.Artist,
			Found:    o.Found,
			TrackID:  o.TrackID,
		}
		if o.Matched != nil {
			tracks[i].MatchedTitle = o.Matched.Title
			tracks[i].MatchedArtist = o.Matched.Artist
		}
	}
	return tracks
}

// Run is a recorded generate-and-resolve call.
type Run struct {
	id             string
	sequence       int
	prompt         string
	requestedCount int
	stats          ResolutionStats
	playlistID     string
	tracks         []RunTrack
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewRun creates a [Run] for prompt with the given requested count and outcomes.
func NewRun(sequence int, prompt string, requestedCount int, stats ResolutionStats, tracks []RunTrack) *Run {
	now := time.Now()
	return &Run{
		sequence:       sequence,
		prompt:         prompt,
		requestedCount: requestedCount,
		stats:          stats,
		tracks:         tracks,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (r *Run) ID() string                 { return r.id }
func (r *Run) Sequence() int              { return r.sequence }
func (r *Run) Prompt() string             { return r.prompt }
func (r *Run) RequestedCount() int        { return r.requestedCount }
func (r *Run) Stats() ResolutionStats     { return r.stats }
func (r *Run) PlaylistID() string         { return r.playlistID }
func (r *Run) Tracks() []RunTrack         { return r.tracks }
func (r *Run) CreatedAt() time.Time       { return r.createdAt }
func (r *Run) UpdatedAt() time.Time       { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time      { return r.deletedAt }
func (r *Run) SetID(id string)            { r.id = id }
func (r *Run) SetSequence(seq int)        { r.sequence = seq }
func (r *Run) SetPlaylistID(id string)    { r.playlistID = id }
func (r *Run) SetTracks(t []RunTrack)     { r.tracks = t }
func (r *Run) SetCreatedAt(t time.Time)   { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time)   { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time)  { r.deletedAt = t }
func (r *Run) SetStats(s ResolutionStats) { r.stats = s }

// PlaylistURL returns the playlist link, or "" when no playlist was created.
func (r *Run) PlaylistURL() string {
	if r.playlistID == "" {
		return ""
	}
	return PlaylistURL(r.playlistID)
}

// Validate checks required fields and stats consistency.
func (r *Run) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(r.prompt) == "" {
		return fmt.Errorf("run prompt is required")
	}
	if r.requestedCount < 1 {
		return fmt.Errorf("run requested count must be positive")
	}
	if r.stats.Found+r.stats.Missing != r.stats.Total {
		return fmt.Errorf("run stats are inconsistent: %d found + %d missing != %d total", r.stats.Found, r.stats.Missing, r.stats.Total)
	}
	return nil
}
