package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
)

// plain renders text unchanged so assertions stay independent of the terminal profile.
type plain struct{}

func (plain) Title(s string) string { return s }
func (plain) OK(s string) string    { return s }
func (plain) Err(s string) string   { return s }
func (plain) Warn(s string) string  { return s }
func (plain) Help(s string) string  { return s }

func TestPalette(t *testing.T) {
	p := Default()
	for name, fn := range map[string]func(string) string{
		"title": p.Title, "ok": p.OK, "err": p.Err, "warn": p.Warn, "help": p.Help,
	} {
		t.Run(name, func(t *testing.T) {
			if got := fn("hello"); !strings.Contains(got, "hello") {
				t.Errorf("rendered %q does not contain input", got)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	t.Run("search update carries step", func(t *testing.T) {
		got := Progress(plain{}, tasks.ProgressUpdate{Phase: tasks.SearchTracks, Step: 2, Total: 5, Message: "[2/5] ✓ A - B"})
		if got != "[search 2/5] [2/5] ✓ A - B" {
			t.Errorf("unexpected line %q", got)
		}
	})

	t.Run("playlist stages", func(t *testing.T) {
		got := Progress(plain{}, tasks.ProgressUpdate{Phase: tasks.CreatePlaylist, Step: 2, Total: 3, Message: "Creating playlist..."})
		if !strings.HasPrefix(got, "[playlist 2/3]") {
			t.Errorf("unexpected line %q", got)
		}
	})
}

func TestGeneration(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		if got := Generation(plain{}, nil); got != "No result available" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("found and missing", func(t *testing.T) {
		found := models.FoundOutcome(
			models.SongCandidate{Title: "Hey Jude", Artist: "The Beatles"},
			models.TierLenient,
			models.MatchedTrack{ID: "t1", Title: "Hey Jude - Remastered 2015", Artist: "The Beatles"},
			[]models.TierAttempt{{Tier: models.TierExact}},
		)
		missing := models.MissingOutcome(
			models.SongCandidate{Title: "Nope", Artist: "Nobody"},
			[]models.TierAttempt{{Tier: models.TierExact}, {Tier: models.TierLenient, Err: fmt.Errorf("boom")}},
		)
		result := &models.GenerationResult{
			Prompt:   "sixties pop",
			Outcomes: []models.TrackSearchOutcome{found, missing},
			Stats:    models.ResolutionStats{Total: 2, Found: 1, Missing: 1},
			RunID:    "run-1",
		}

		got := Generation(plain{}, result)
		for _, want := range []string{
			`Recommendations for "sixties pop"`,
			"✓  1. The Beatles - Hey Jude → The Beatles - Hey Jude - Remastered 2015 [lenient]",
			"✗  2. Nobody - Nope boom",
			"Matched 1/2 (50.0%)",
			"run run-1",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})
}

func TestPlaylistFailure(t *testing.T) {
	t.Run("attach failure names orphan", func(t *testing.T) {
		err := &tasks.PlaylistError{
			Stage:      tasks.StageAttachTracks,
			PlaylistID: "p1",
			Err:        &shared.UpstreamError{Service: "Spotify", Status: 401, Body: "expired"},
		}
		got := PlaylistFailure(plain{}, err)
		for _, want := range []string{"attach_tracks", models.PlaylistURL("p1"), "--token"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("other errors", func(t *testing.T) {
		got := PlaylistFailure(plain{}, errors.New("boom"))
		if got != "Playlist failed: boom" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := History(plain{}, nil); got != "No runs recorded" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("lists runs", func(t *testing.T) {
		run := models.NewRun(3, "rainy day jazz", 2, models.ResolutionStats{Total: 2, Found: 2}, nil)
		run.SetID("abc")
		run.SetPlaylistID("p9")

		got := History(plain{}, []*models.Run{run})
		for _, want := range []string{"#3", "2/2", "rainy day jazz", models.PlaylistURL("p9"), "abc"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})
}
