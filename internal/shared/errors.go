package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUpstreamAuth       = fmt.Errorf("upstream rejected credentials")
	ErrUpstreamRequest    = fmt.Errorf("upstream request failed")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrRunNotFound        = fmt.Errorf("run not found")
	ErrNoMigrations       = fmt.Errorf("no migrations to rollback")

	// Generation errors
	ErrRecommendationFormat = fmt.Errorf("malformed recommendation response")

	// Playlist assembly errors
	ErrProfileResolution = fmt.Errorf("profile resolution failed")
	ErrPlaylistCreate    = fmt.Errorf("playlist create failed")
	ErrTrackAttach       = fmt.Errorf("track attach failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// UpstreamError is returned for any non-2xx response from a dependent service.
//
// It unwraps to [ErrUpstreamAuth] for 401/403 and [ErrUpstreamRequest] otherwise.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Service, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUpstreamAuth
	}
	return ErrUpstreamRequest
}

// UpstreamStatus returns the upstream HTTP status carried anywhere in err's chain, or 0.
func UpstreamStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// FormatErrorKind distinguishes the ways a generated response can be malformed.
type FormatErrorKind int

const (
	FormatUnparseable FormatErrorKind = iota // not valid JSON
	FormatShape                              // JSON, but missing keys or wrong types
	FormatCount                              // well-formed, wrong number of entries
)

func (k FormatErrorKind) String() string {
	switch k {
	case FormatUnparseable:
		return "unparseable"
	case FormatShape:
		return "shape"
	case FormatCount:
		return "count"
	default:
		return "unknown"
	}
}

// RecommendationFormatError reports a generated response that violates the output contract.
type RecommendationFormatError struct {
	Kind     FormatErrorKind
	Expected int
	Got      int
	Detail   string
	Err      error
}

func (e *RecommendationFormatError) Error() string {
	switch e.Kind {
	case FormatCount:
		return fmt.Sprintf("%v: expected %d recommendations, got %d", ErrRecommendationFormat, e.Expected, e.Got)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%v (%v): %s", ErrRecommendationFormat, e.Kind, e.Detail)
		}
		return fmt.Sprintf("%v (%v)", ErrRecommendationFormat, e.Kind)
	}
}

func (e *RecommendationFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRecommendationFormat}
	}
	return []error{ErrRecommendationFormat, e.Err}
}
