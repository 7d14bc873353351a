// Package tasks turns a listening prompt into a Spotify playlist with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.GenerateAndResolve] : prompt to resolved tracks
//     - [Generator] asks a [services.Completer] for exactly N (title, artist) pairs
//     - [Resolver] searches each pair, exact field query first, free-text query second
//     - Returns one outcome per candidate in order, plus found/missing counts
//
//  2. [Engine.CreatePlaylist] : track ids to playlist
//     - [Assembler] resolves the profile, creates a public playlist, attaches all tracks in one call
//     - Failures carry the [Stage] and, after creation, the orphaned playlist id ([PlaylistError])
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] stores each generation and links created playlists back to it.
// Recording errors are logged and never fail the operation.
//
// # Concurrency
//
// The resolver is sequential by default. [ResolverOpts] enables a worker pool and a
// [rate.Limiter] for search pacing; outcomes keep candidate order either way.
package tasks
