package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const runColumns = `id, sequence, prompt, requested_count, found_count, missing_count, playlist_id, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.Run] for generation history.
//
// Runs and their per-candidate rows are written in one transaction. Deletes are soft.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run and its tracks with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats := run.Stats()
	_, err = tx.Exec(`
		INSERT INTO runs (id, sequence, prompt, requested_count, found_count, missing_count, playlist_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID(),
		sequence,
		run.Prompt(),
		run.RequestedCount(),
		stats.Found,
		stats.Missing,
		run.PlaylistID(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertTracks(tx, run.ID(), run.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertTracks(tx *sql.Tx, runID string, tracks []models.RunTrack) error {
	stmt, err := tx.Prepare(`
		INSERT INTO run_tracks (run_id, position, title, artist, found, track_id, matched_title, matched_artist)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		if _, err := stmt.Exec(runID, i, t.Title, t.Artist, t.Found, t.TrackID, t.MatchedTitle, t.MatchedArtist); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i, err)
		}
	}
	return nil
}

// Get retrieves a run by ID with its tracks, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	tracks, err := r.Tracks(id)
	if err != nil {
		return nil, err
	}
	run.SetTracks(tracks)
	return run, nil
}

// Tracks retrieves the per-candidate rows of a run in candidate order
func (r *RunRepository) Tracks(runID string) ([]models.RunTrack, error) {
	rows, err := r.db.Query(`
		SELECT position, title, artist, found, track_id, matched_title, matched_artist
		FROM run_tracks
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.RunTrack{}
	for rows.Next() {
		var t models.RunTrack
		if err := rows.Scan(&t.Position, &t.Title, &t.Artist, &t.Found, &t.TrackID, &t.MatchedTitle, &t.MatchedArtist); err != nil {
			return nil, fmt.Errorf("failed to scan run track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// Update modifies the counts and playlist link of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)
	stats := run.Stats()

	result, err := r.db.Exec(`
		UPDATE runs
		SET found_count = ?, missing_count = ?, playlist_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, stats.Found, stats.Missing, run.PlaylistID(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return requireRow(result, run.ID())
}

// AttachPlaylist records the playlist created from a run
func (r *RunRepository) AttachPlaylist(runID, playlistID string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET playlist_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, playlistID, time.Now(), runID)
	if err != nil {
		return fmt.Errorf("failed to attach playlist: %w", err)
	}

	return requireRow(result, runID)
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "has_playlist" (bool), "prompt" (substring, string), "limit" (int).
// Tracks are not loaded; use [RunRepository.Tracks].
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if hasPlaylist, ok := criteria["has_playlist"].(bool); ok {
		if hasPlaylist {
			query += " AND playlist_id != ''"
		} else {
			query += " AND playlist_id = ''"
		}
	}

	if prompt, ok := criteria["prompt"].(string); ok && prompt != "" {
		query += " AND prompt LIKE ?"
		args = append(args, "%"+prompt+"%")
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a row from [sql.Row] or [sql.Rows] into a [models.Run]
func scanRun(row rowScanner) (*models.Run, error) {
	var (
		id             string
		sequence       int
		prompt         string
		requestedCount int
		foundCount     int
		missingCount   int
		playlistID     string
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &prompt, &requestedCount, &foundCount, &missingCount, &playlistID, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	stats := models.ResolutionStats{Total: foundCount + missingCount, Found: foundCount, Missing: missingCount}
	run := models.NewRun(sequence, prompt, requestedCount, stats, nil)
	run.SetID(id)
	run.SetPlaylistID(playlistID)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)
