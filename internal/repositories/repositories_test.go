package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func sampleOutcomes() []models.TrackSearchOutcome {
	return []models.TrackSearchOutcome{
		models.FoundOutcome(
			models.SongCandidate{Title: "Hey Jude", Artist: "Beatles"},
			models.TierLenient,
			models.MatchedTrack{ID: "abc", Title: "Hey Jude - Remastered 2015", Artist: "The Beatles"},
			[]models.TierAttempt{{Tier: models.TierExact}},
		),
		models.MissingOutcome(models.SongCandidate{Title: "Imaginary Song", Artist: "Nobody"}, nil),
	}
}

func newSampleRun() *models.Run {
	return models.NewRun(0, "60s classics", 2,
		models.ResolutionStats{Total: 2, Found: 1, Missing: 1},
		models.RunTracksFromOutcomes(sampleOutcomes()))
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newSampleRun()

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create Rejects Invalid Run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(0, "", 1, models.ResolutionStats{}, nil)

		if err := repo.Create(run); err == nil {
			t.Error("expected validation error for empty prompt")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newSampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Prompt() != "60s classics" || got.RequestedCount() != 2 {
			t.Errorf("unexpected run %s/%d", got.Prompt(), got.RequestedCount())
		}
		if got.Stats() != run.Stats() {
			t.Errorf("expected stats %+v, got %+v", run.Stats(), got.Stats())
		}

		tracks := got.Tracks()
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if !tracks[0].Found || tracks[0].TrackID != "abc" || tracks[0].MatchedArtist != "The Beatles" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if tracks[1].Found || tracks[1].TrackID != "" || tracks[1].Title != "Imaginary Song" {
			t.Errorf("unexpected second track %+v", tracks[1])
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newSampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetPlaylistID("pl1")
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, _ := repo.Get(run.ID())
		if got.PlaylistID() != "pl1" {
			t.Errorf("expected playlist id pl1, got %q", got.PlaylistID())
		}
	})

	t.Run("AttachPlaylist", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newSampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.AttachPlaylist(run.ID(), "pl2"); err != nil {
			t.Fatalf("failed to attach playlist: %v", err)
		}
		got, _ := repo.Get(run.ID())
		if got.PlaylistURL() != "https://open.spotify.com/playlist/pl2" {
			t.Errorf("unexpected playlist url %q", got.PlaylistURL())
		}

		if err := repo.AttachPlaylist("missing", "pl2"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := newSampleRun()
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected deleted run to be hidden")
		}
		if err := repo.Delete(run.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		prompts := []string{"rainy jazz", "summer pop", "rainy lofi"}
		var runs []*models.Run
		for _, p := range prompts {
			run := models.NewRun(0, p, 1, models.ResolutionStats{Total: 1, Found: 1}, nil)
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
			runs = append(runs, run)
		}
		repo.AttachPlaylist(runs[1].ID(), "pl")

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 || all[0].Prompt() != "rainy lofi" {
			t.Errorf("expected newest first, got %d runs", len(all))
		}

		rainy, _ := repo.List(map[string]any{"prompt": "rainy"})
		if len(rainy) != 2 {
			t.Errorf("expected 2 rainy runs, got %d", len(rainy))
		}

		withPlaylist, _ := repo.List(map[string]any{"has_playlist": true})
		if len(withPlaylist) != 1 || withPlaylist[0].ID() != runs[1].ID() {
			t.Errorf("expected only the linked run, got %d", len(withPlaylist))
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)
		db.Close()

		if err := repo.Create(newSampleRun()); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing on closed database")
		}
	})
}

func TestRunRecorderAdapter(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))
	adapter := NewRunRecorderAdapter(repo)

	result := &models.GenerationResult{
		Prompt:   "60s classics",
		Outcomes: sampleOutcomes(),
		Stats:    models.ResolutionStats{Total: 2, Found: 1, Missing: 1},
	}

	runID, err := adapter.RecordGeneration(context.Background(), 2, result)
	if err != nil {
		t.Fatalf("failed to record generation: %v", err)
	}

	if err := adapter.RecordPlaylist(context.Background(), runID, "pl1"); err != nil {
		t.Fatalf("failed to record playlist: %v", err)
	}

	run, err := repo.Get(runID)
	if err != nil {
		t.Fatalf("failed to get recorded run: %v", err)
	}
	if run.PlaylistID() != "pl1" || len(run.Tracks()) != 2 {
		t.Errorf("unexpected recorded run: playlist %q, %d tracks", run.PlaylistID(), len(run.Tracks()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := adapter.RecordGeneration(ctx, 2, result); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error, got %v", err)
	}
}
