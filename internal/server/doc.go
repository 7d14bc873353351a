// Package server exposes the task engine as a small JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//   - GET /health : {"status":"ok"}
//   - POST /generate : {prompt, count} to candidates, outcomes, track ids and stats
//   - POST /playlist : {track_ids, title, description, run_id} to {playlist_id, playlist_url, track_count} with 201
//
// Both POST endpoints require "Authorization: Bearer <spotify token>" and answer 401 without it.
// The token is passed through to Spotify untouched; the service never refreshes it.
//
// # Errors
//
// Error bodies are {"error": ...}. Playlist failures add "stage" and, when a playlist was already
// created, "playlist_id". An upstream 4xx/5xx status is propagated as the response status;
// other failures are 502. Invalid input is 400.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
