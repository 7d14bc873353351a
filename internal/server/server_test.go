package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	tu "github.com/desertthunder/tunesmith/internal/testing"
)

func recommendations(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title":"Song %d","artist":"Artist %d"}`, i+1, i+1)
	}
	return `{"recommendations":[` + strings.Join(items, ",") + `]}`
}

func everyExactHit(q string) ([]models.MatchedTrack, error) {
	if strings.HasPrefix(q, "track:") {
		return []models.MatchedTrack{{ID: "t-" + q[7:13], Title: "x", Artist: "y"}}, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T, completer *tu.MockCompleter, catalog *tu.MockCatalog) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs)
	engine := tasks.NewPlaylistEngine(completer, catalog, tasks.EngineOpts{
		Bounds: models.Bounds{MinCount: 1, MaxCount: 25, MaxPromptLength: 200},
	})
	srv := httptest.NewServer(New(engine, 3, logger))
	t.Cleanup(srv.Close)
	return srv, &logs
}

func post(t *testing.T, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	return resp, decoded
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &tu.MockCompleter{}, &tu.MockCatalog{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("expected request id header")
	}

	t.Run("Wrong Method", func(t *testing.T) {
		resp, _ := post(t, srv.URL+"/health", "", "")
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		completer := &tu.MockCompleter{Responses: []string{recommendations(2)}}
		catalog := &tu.MockCatalog{SearchFunc: everyExactHit}
		srv, logs := newTestServer(t, completer, catalog)

		resp, body := post(t, srv.URL+"/generate", "spotify-token", `{"prompt":"chill","count":2}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
		}
		if ids, _ := body["track_ids"].([]any); len(ids) != 2 {
			t.Errorf("expected 2 track ids, got %v", body["track_ids"])
		}
		stats, _ := body["stats"].(map[string]any)
		if stats["found"] != float64(2) {
			t.Errorf("unexpected stats %v", stats)
		}
		if catalog.Credentials[0] != "spotify-token" {
			t.Errorf("expected bearer token passed to catalog, got %q", catalog.Credentials[0])
		}
		if !strings.Contains(logs.String(), "/generate") {
			t.Error("expected request to be logged")
		}
	})

	t.Run("Default Count", func(t *testing.T) {
		completer := &tu.MockCompleter{Responses: []string{recommendations(3)}}
		srv, _ := newTestServer(t, completer, &tu.MockCatalog{})

		resp, _ := post(t, srv.URL+"/generate", "tok", `{"prompt":"chill"}`)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 with default count 3, got %d", resp.StatusCode)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		completer := &tu.MockCompleter{}
		srv, _ := newTestServer(t, completer, &tu.MockCatalog{})

		resp, _ := post(t, srv.URL+"/generate", "", `{"prompt":"chill","count":2}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
		if completer.Calls() != 0 {
			t.Error("expected no completion without token")
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		srv, _ := newTestServer(t, &tu.MockCompleter{}, &tu.MockCatalog{})

		resp, _ := post(t, srv.URL+"/generate", "tok", `{"prompt":"","count":2}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}

		resp, _ = post(t, srv.URL+"/generate", "tok", `{not json`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for bad body, got %d", resp.StatusCode)
		}
	})

	t.Run("Malformed Generation", func(t *testing.T) {
		srv, _ := newTestServer(t, &tu.MockCompleter{Responses: []string{"not json"}}, &tu.MockCatalog{})

		resp, body := post(t, srv.URL+"/generate", "tok", `{"prompt":"x","count":2}`)
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
		if !strings.Contains(fmt.Sprint(body["error"]), "malformed recommendation") {
			t.Errorf("unexpected error body %v", body)
		}
	})
}

func TestPlaylistEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		catalog := &tu.MockCatalog{PlaylistID: "pl1"}
		srv, _ := newTestServer(t, &tu.MockCompleter{}, catalog)

		resp, body := post(t, srv.URL+"/playlist", "tok", `{"title":"Mix","track_ids":["a","b"]}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
		}
		if body["playlist_id"] != "pl1" || body["playlist_url"] != "https://open.spotify.com/playlist/pl1" || body["track_count"] != float64(2) {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("Upstream Unauthorized Propagates", func(t *testing.T) {
		catalog := &tu.MockCatalog{ProfileErr: &shared.UpstreamError{Service: "spotify", Status: 401, Body: "expired"}}
		srv, _ := newTestServer(t, &tu.MockCompleter{}, catalog)

		resp, body := post(t, srv.URL+"/playlist", "tok", `{"title":"Mix","track_ids":[]}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
		if body["stage"] != "resolve_user" {
			t.Errorf("expected resolve_user stage, got %v", body["stage"])
		}
	})

	t.Run("Attach Failure Reports Orphan", func(t *testing.T) {
		catalog := &tu.MockCatalog{PlaylistID: "orphan", AddErr: &shared.UpstreamError{Service: "spotify", Status: 500, Body: "oops"}}
		srv, _ := newTestServer(t, &tu.MockCompleter{}, catalog)

		resp, body := post(t, srv.URL+"/playlist", "tok", `{"title":"Mix","track_ids":["a"]}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", resp.StatusCode)
		}
		if body["playlist_id"] != "orphan" || body["stage"] != "attach_tracks" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("Transport Failure Is Bad Gateway", func(t *testing.T) {
		catalog := &tu.MockCatalog{CreateErr: fmt.Errorf("%w: dial tcp", shared.ErrServiceUnavailable)}
		srv, _ := newTestServer(t, &tu.MockCompleter{}, catalog)

		resp, body := post(t, srv.URL+"/playlist", "tok", `{"title":"Mix"}`)
		if resp.StatusCode != http.StatusBadGateway || body["stage"] != "create_playlist" {
			t.Errorf("expected 502 at create stage, got %d %v", resp.StatusCode, body)
		}
	})

	t.Run("Missing Title", func(t *testing.T) {
		srv, _ := newTestServer(t, &tu.MockCompleter{}, &tu.MockCatalog{})

		resp, _ := post(t, srv.URL+"/playlist", "tok", `{"track_ids":["a"]}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(r)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	logger := log.New(io.Discard)
	router := NewBasicRouter()
	router.Use(RecoverMiddleware(logger))
	router.Handle(http.MethodGet, "/panic", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mw("first"), mw("second"))
	router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected middleware order %v", order)
	}
}
