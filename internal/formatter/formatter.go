// package formatter renders generation results to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// Formats lists the accepted format names.
var Formats = []string{"json", "csv", "markdown", "txt"}

// Row is one rendered candidate.
type Row struct {
	Position      int    `json:"position"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Found         bool   `json:"found"`
	Tier          string `json:"tier,omitempty"`
	TrackID       string `json:"track_id,omitempty"`
	MatchedTitle  string `json:"matched_title,omitempty"`
	MatchedArtist string `json:"matched_artist,omitempty"`
}

// Report is the renderable view of a generation, live or recorded.
type Report struct {
	RunID       string                 `json:"run_id,omitempty"`
	Prompt      string                 `json:"prompt"`
	Stats       models.ResolutionStats `json:"stats"`
	TrackIDs    []string               `json:"track_ids"`
	PlaylistURL string                 `json:"playlist_url,omitempty"`
	Rows        []Row                  `json:"rows"`
}

// NewReport builds a report from a live generation result.
func NewReport(result *models.GenerationResult) *Report {
	rows := make([]Row, len(result.Outcomes))
	for i, o := range result.Outcomes {
		rows[i] = Row{
			Position: i + 1,
			Title:    o.Original.Title,
			Artist:   o.Original.Artist,
			Found:    o.Found,
			TrackID:  o.TrackID,
		}
		if o.Found {
			rows[i].Tier = o.Tier.String()
		}
		if o.Matched != nil {
			rows[i].MatchedTitle = o.Matched.Title
			rows[i].MatchedArtist = o.Matched.Artist
		}
	}

	ids := result.ResolvedTrackIDs
	if ids == nil {
		ids = []string{}
	}

	return &Report{
		RunID:    result.RunID,
		Prompt:   result.Prompt,
		Stats:    result.Stats,
		TrackIDs: ids,
		Rows:     rows,
	}
}

// RunReport builds a report from a recorded run.
func RunReport(run *models.Run) *Report {
	tracks := run.Tracks()
	rows := make([]Row, len(tracks))
	ids := []string{}
	for i, t := range tracks {
		rows[i] = Row{
			Position:      t.Position + 1,
			Title:         t.Title,
			Artist:        t.Artist,
			Found:         t.Found,
			TrackID:       t.TrackID,
			MatchedTitle:  t.MatchedTitle,
			MatchedArtist: t.MatchedArtist,
		}
		if t.Found {
			ids = append(ids, t.TrackID)
		}
	}

	return &Report{
		RunID:       run.ID(),
		Prompt:      run.Prompt(),
		Stats:       run.Stats(),
		TrackIDs:    ids,
		PlaylistURL: run.PlaylistURL(),
		Rows:        rows,
	}
}

// Render renders the report in the named format.
func Render(report *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return shared.MarshalJSON(report, true)
	case "csv":
		return ExportToCSV(report)
	case "markdown", "md":
		return ExportToMarkdown(report)
	case "txt", "text":
		return ExportToText(report)
	default:
		return nil, CheckFormat(format)
	}
}

// CheckFormat reports whether format names a supported renderer.
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "json", "csv", "markdown", "md", "txt", "text":
		return nil
	}
	return fmt.Errorf("%w: unsupported format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
}

// ExportToCSV converts a Report to CSV with columns: Position, Title, Artist, Found, Tier, Track ID, Matched Title, Matched Artist
func ExportToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Found", "Tier", "Track ID", "Matched Title", "Matched Artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			strconv.Itoa(row.Position),
			row.Title,
			row.Artist,
			strconv.FormatBool(row.Found),
			row.Tier,
			row.TrackID,
			row.MatchedTitle,
			row.MatchedArtist,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Report to Markdown with a summary and a candidate table
func ExportToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.Prompt)

	if report.RunID != "" {
		fmt.Fprintf(&buf, "**Run**: %s\n", report.RunID)
	}
	fmt.Fprintf(&buf, "**Found**: %d/%d (%.0f%%)\n", report.Stats.Found, report.Stats.Total, report.Stats.MatchPercentage())
	if report.PlaylistURL != "" {
		fmt.Fprintf(&buf, "**Playlist**: %s\n", report.PlaylistURL)
	}
	buf.WriteString("\n## Tracks\n\n")
	buf.WriteString("| # | Candidate | Match | Track ID |\n")
	buf.WriteString("|---|-----------|-------|----------|\n")

	for _, row := range report.Rows {
		match := "not found"
		if row.Found {
			match = fmt.Sprintf("%s - %s", mdEscape(row.MatchedArtist), mdEscape(row.MatchedTitle))
		}
		fmt.Fprintf(&buf, "| %d | %s - %s | %s | %s |\n",
			row.Position, mdEscape(row.Artist), mdEscape(row.Title), match, row.TrackID)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Report to plain text format
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Prompt: %s\n", report.Prompt)
	if report.RunID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", report.RunID)
	}
	fmt.Fprintf(&buf, "Found: %d/%d\n", report.Stats.Found, report.Stats.Total)
	if report.PlaylistURL != "" {
		fmt.Fprintf(&buf, "Playlist: %s\n", report.PlaylistURL)
	}
	buf.WriteString("\n")

	for _, row := range report.Rows {
		if row.Found {
			fmt.Fprintf(&buf, "%d. %s - %s -> %s (%s)\n", row.Position, row.Artist, row.Title, row.TrackID, row.MatchedTitle)
		} else {
			fmt.Fprintf(&buf, "%d. %s - %s -> not found\n", row.Position, row.Artist, row.Title)
		}
	}

	return buf.Bytes(), nil
}

// WriteExport renders the report and writes it to path.
func WriteExport(report *Report, format, path string) error {
	data, err := Render(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
