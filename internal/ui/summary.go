package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
)

// Progress renders a single engine update as one status line.
func Progress(p Painter, u tasks.ProgressUpdate) string {
	var phase string
	switch u.Phase {
	case tasks.Generate:
		phase = "generate"
	case tasks.SearchTracks:
		if u.Total > 0 {
			phase = fmt.Sprintf("search %d/%d", u.Step, u.Total)
		} else {
			phase = "search"
		}
	case tasks.ResolveUser, tasks.CreatePlaylist, tasks.AttachTracks:
		phase = fmt.Sprintf("playlist %d/%d", u.Step, u.Total)
	case tasks.RecordRun:
		phase = "history"
	default:
		phase = "processing"
	}

	msg := u.Message
	if o, ok := u.Data.(models.TrackSearchOutcome); ok && !o.Found {
		msg = p.Warn(msg)
	}
	return fmt.Sprintf("%s %s", p.Help("["+phase+"]"), msg)
}

// Generation renders the found/missing breakdown of a generate run.
func Generation(p Painter, result *models.GenerationResult) string {
	if result == nil {
		return p.Err("No result available")
	}

	var b strings.Builder
	b.WriteString(p.Title(fmt.Sprintf("Recommendations for %q", shared.Truncate(result.Prompt, 60))))
	b.WriteString("\n\n")

	for i, o := range result.Outcomes {
		if o.Found {
			fmt.Fprintf(&b, "%s %2d. %s", p.OK("✓"), i+1, o.Original)
			if o.Matched != nil && *o.Matched != o.Original {
				fmt.Fprintf(&b, " %s", p.Help(fmt.Sprintf("→ %s", *o.Matched)))
			}
			fmt.Fprintf(&b, " %s\n", p.Help(fmt.Sprintf("[%s]", o.Tier)))
			continue
		}
		fmt.Fprintf(&b, "%s %2d. %s", p.Err("✗"), i+1, o.Original)
		if err := o.LastError(); err != nil {
			fmt.Fprintf(&b, " %s", p.Warn(err.Error()))
		}
		b.WriteString("\n")
	}

	s := result.Stats
	line := fmt.Sprintf("Matched %d/%d (%.1f%%)", s.Found, s.Total, s.MatchPercentage())
	b.WriteString("\n")
	switch {
	case s.Total > 0 && s.Missing == 0:
		b.WriteString(p.OK(line))
	case s.Found == 0:
		b.WriteString(p.Err(line))
	default:
		b.WriteString(p.Warn(line))
	}
	b.WriteString("\n")

	if result.RunID != "" {
		fmt.Fprintf(&b, "%s\n", p.Help("run "+result.RunID))
	}
	return b.String()
}

// Playlist renders a created playlist.
func Playlist(p Painter, res *models.PlaylistResult) string {
	if res == nil {
		return p.Err("No playlist created")
	}
	return fmt.Sprintf("%s\n%s (%d tracks)\n", p.OK("✓ Playlist created"), res.PlaylistURL, res.TrackCount)
}

// PlaylistFailure describes how far assembly got before err stopped it.
func PlaylistFailure(p Painter, err error) string {
	var pe *tasks.PlaylistError
	if !errors.As(err, &pe) {
		return p.Err(fmt.Sprintf("Playlist failed: %v", err))
	}

	out := p.Err(fmt.Sprintf("Playlist failed at %s: %v", pe.Stage, pe.Err))
	if pe.PlaylistID != "" {
		out += "\n" + p.Warn(fmt.Sprintf("An empty playlist was left behind: %s", models.PlaylistURL(pe.PlaylistID)))
	}
	if errors.Is(err, shared.ErrUpstreamAuth) {
		out += "\n" + p.Help("The Spotify access token was rejected; supply a fresh one with --token")
	}
	return out
}

// History renders a list of recorded runs, newest first.
func History(p Painter, runs []*models.Run) string {
	if len(runs) == 0 {
		return p.Help("No runs recorded")
	}

	var b strings.Builder
	b.WriteString(p.Title("Run history"))
	b.WriteString("\n\n")
	for _, r := range runs {
		s := r.Stats()
		fmt.Fprintf(&b, "#%-4d %s  %d/%d  %s", r.Sequence(), r.CreatedAt().Format("2006-01-02 15:04"), s.Found, s.Total,
			shared.Truncate(r.Prompt(), 48))
		if url := r.PlaylistURL(); url != "" {
			fmt.Fprintf(&b, "  %s", p.OK(url))
		}
		fmt.Fprintf(&b, "\n      %s\n", p.Help(r.ID()))
	}
	return b.String()
}
