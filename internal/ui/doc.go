// Package ui renders terminal summaries for the CLI with lipgloss styles.
//
// Renderers take a [Painter] so tests can pass a plain one; the CLI uses [Default].
// [Progress] formats one engine update per line, [Generation] shows found and missing
// tracks with the match rate, and [PlaylistFailure] reports the stage an assembly stopped at.
package ui
