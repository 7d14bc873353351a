// Package models defines domain entities and persistence interfaces for tunesmith.
//
// The package contains two categories of types:
//
// 1. Transient values passed between the generator, resolver and assembler:
//   - [SongCandidate] : a (title, artist) pair proposed by the generative service
//   - [TrackSearchOutcome] : the result of resolving one candidate against the catalog
//   - [GenerationResult] : candidates, outcomes and [ResolutionStats] for one request
//   - [PlaylistCreationRequest] and [PlaylistResult] : playlist assembly input and output
//
// 2. Persistent entities with full lifecycle management:
//   - [Run] : a recorded generation with its per-candidate [RunTrack] rows
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
