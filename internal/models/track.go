package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SongCandidate is a (title, artist) pair proposed by the generative service.
//
// A candidate is not yet confirmed to exist in the catalog.
type SongCandidate struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (c SongCandidate) String() string {
	return fmt.Sprintf("%s - %s", c.Artist, c.Title)
}

// MatchedTrack is a catalog track as the catalog names it.
type MatchedTrack struct {
	ID     string
	Title  string
	Artist string
	URI    string
}

// Candidate returns the catalog's canonical (title, artist) pair.
func (m MatchedTrack) Candidate() SongCandidate {
	return SongCandidate{Title: m.Title, Artist: m.Artist}
}

// SearchTier identifies one of the two search strategies tried per candidate.
type SearchTier int

const (
	TierNone    SearchTier = iota
	TierExact              // field-qualified, quoted title and artist
	TierLenient            // free-text quoted title and artist
)

func (t SearchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierLenient:
		return "lenient"
	default:
		return "none"
	}
}

func (t SearchTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Resolution is the state of a candidate after one or both tiers were evaluated.
type Resolution int

const (
	ResolutionPending     Resolution = iota
	ResolutionFound                  // a tier produced an item
	ResolutionExactMiss              // exact tier produced no item; lenient tier pending
	ResolutionLenientMiss            // both tiers produced no item
)

func (r Resolution) String() string {
	switch r {
	case ResolutionPending:
		return "pending"
	case ResolutionFound:
		return "found"
	case ResolutionExactMiss:
		return "exact_miss"
	case ResolutionLenientMiss:
		return "lenient_miss"
	default:
		return "unknown"
	}
}

func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// TierAttempt records one tier that did not produce a match and why.
//
// Err is nil when the catalog answered with zero items.
type TierAttempt struct {
	Tier SearchTier
	Err  error
}

func (a TierAttempt) MarshalJSON() ([]byte, error) {
	out := struct {
		Tier  SearchTier `json:"tier"`
		Error string     `json:"error,omitempty"`
	}{Tier: a.Tier}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

// TrackSearchOutcome is the result of resolving one [SongCandidate].
//
// Found outcomes carry the catalog's own naming in Matched; not-found outcomes never carry a TrackID or Matched pair.
type TrackSearchOutcome struct {
	Original   SongCandidate  `json:"original"`
	Found      bool           `json:"found"`
	TrackID    string         `json:"track_id,omitempty"`
	Matched    *SongCandidate `json:"matched,omitempty"`
	Resolution Resolution     `json:"resolution"`
	Tier       SearchTier     `json:"tier"`     // tier that produced the match
	Attempts   []TierAttempt  `json:"attempts"` // tiers that missed, in order
}

// FoundOutcome builds a found outcome from the catalog's match.
func FoundOutcome(original SongCandidate, tier SearchTier, track MatchedTrack, misses []TierAttempt) TrackSearchOutcome {
	matched := track.Candidate()
	return TrackSearchOutcome{
		Original:   original,
		Found:      true,
		TrackID:    track.ID,
		Matched:    &matched,
		Resolution: ResolutionFound,
		Tier:       tier,
		Attempts:   misses,
	}
}

// MissingOutcome builds a not-found outcome.
func MissingOutcome(original SongCandidate, misses []TierAttempt) TrackSearchOutcome {
	return TrackSearchOutcome{
		Original:   original,
		Resolution: ResolutionLenientMiss,
		Tier:       TierNone,
		Attempts:   misses,
	}
}

// LastError returns the most recent tier error, if any.
func (o TrackSearchOutcome) LastError() error {
	for i := len(o.Attempts) - 1; i >= 0; i-- {
		if o.Attempts[i].Err != nil {
			return o.Attempts[i].Err
		}
	}
	return nil
}

// ResolutionStats summarizes a set of outcomes.
type ResolutionStats struct {
	Total   int `json:"total"`
	Found   int `json:"found"`
	Missing int `json:"missing"`
}

// MatchPercentage returns the found rate as a percentage.
func (s ResolutionStats) MatchPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Total) * 100
}

// RecommendationRequest asks the generator for Count candidates matching Prompt.
type RecommendationRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

// Bounds limits accepted recommendation requests.
type Bounds struct {
	MinCount        int
	MaxCount        int
	MaxPromptLength int
}

// Validate checks the request against b, returning a description of the first violation.
func (r RecommendationRequest) Validate(b Bounds) error {
	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if b.MaxPromptLength > 0 && len([]rune(prompt)) > b.MaxPromptLength {
		return fmt.Errorf("prompt must be at most %d characters", b.MaxPromptLength)
	}
	if r.Count < b.MinCount || (b.MaxCount > 0 && r.Count > b.MaxCount) {
		return fmt.Errorf("count must be between %d and %d, got %d", b.MinCount, b.MaxCount, r.Count)
	}
	return nil
}

// GenerationResult is the outcome of one generate-and-resolve call.
type GenerationResult struct {
	Prompt           string               `json:"prompt"`
	Candidates       []SongCandidate      `json:"candidates"`
	Outcomes         []TrackSearchOutcome `json:"outcomes"`
	ResolvedTrackIDs []string             `json:"track_ids"`
	Stats            ResolutionStats      `json:"stats"`
	RunID            string               `json:"run_id,omitempty"`
}
