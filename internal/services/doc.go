// Package services implements the upstream HTTP clients used by tasks.
//
// # Interfaces
//
// [Completer] is the generative text boundary and [Catalog] the music catalog boundary
// ([Searcher] for lookups, [PlaylistWriter] for playlist creation). Tasks depend on these
// interfaces so tests can substitute hand-written mocks.
//
// # Transport
//
// Both clients share [APIService], which encodes JSON bodies, attaches the bearer header via
// [oauth2.Token.SetAuthHeader], and turns any rejected status into a [shared.UpstreamError]
// carrying the status and body verbatim. Transport failures wrap [shared.ErrServiceUnavailable].
//
// # Spotify
//
// [SpotifyService] never stores a token. Each call takes the caller's credential, so one
// service value can serve many users. Creating a playlist only succeeds on 201 Created.
//
// # OpenAI
//
// [OpenAIService] posts to {base}/chat/completions with the configured model and returns the
// first choice's message content.
package services
