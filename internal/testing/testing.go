// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
)

// MockCompleter is a test double for [services.Completer].
//
// Responses are returned in order; the last one repeats once exhausted.
type MockCompleter struct {
	Responses []string
	Err       error

	mu      sync.Mutex
	Systems []string
	Users   []string
}

func (m *MockCompleter) Name() string { return "mock-completer" }

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Systems = append(m.Systems, system)
	m.Users = append(m.Users, user)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Users) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// Calls returns how many completions were requested.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users)
}

// AddTracksCall records one AddTracks invocation.
type AddTracksCall struct {
	PlaylistID string
	TrackIDs   []string
}

// CreatePlaylistCall records one CreatePlaylist invocation.
type CreatePlaylistCall struct {
	UserID      string
	Name        string
	Description string
}

// MockCatalog is a test double for [services.Catalog] that records every call.
//
// SearchFunc decides search results per query; nil means every query misses.
type MockCatalog struct {
	SearchFunc func(query string) ([]models.MatchedTrack, error)

	Profile    *models.Profile
	ProfileErr error
	PlaylistID string
	CreateErr  error
	AddErr     error

	mu          sync.Mutex
	Queries     []string
	Credentials []string
	ProfileHits int
	Creates     []CreatePlaylistCall
	Adds        []AddTracksCall
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

func (m *MockCatalog) SearchTracks(ctx context.Context, credential, query string, limit int) ([]models.MatchedTrack, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.Credentials = append(m.Credentials, credential)
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	items, err := fn(query)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, err
}

func (m *MockCatalog) CurrentUser(ctx context.Context, credential string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProfileHits++
	m.Credentials = append(m.Credentials, credential)
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.Profile == nil {
		return &models.Profile{ID: "mock-user", DisplayName: "Mock User"}, nil
	}
	return m.Profile, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, credential, userID, name, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Creates = append(m.Creates, CreatePlaylistCall{UserID: userID, Name: name, Description: description})
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if m.PlaylistID == "" {
		return "mock-playlist", nil
	}
	return m.PlaylistID, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, credential, playlistID string, trackIDs []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := append([]string(nil), trackIDs...)
	m.Adds = append(m.Adds, AddTracksCall{PlaylistID: playlistID, TrackIDs: ids})
	if m.AddErr != nil {
		return "", m.AddErr
	}
	return "snapshot", nil
}

// SearchCount returns how many searches were issued.
func (m *MockCatalog) SearchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// WriteCalls returns the number of profile, create and attach calls made.
func (m *MockCatalog) WriteCalls() (profile, create, attach int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ProfileHits, len(m.Creates), len(m.Adds)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
