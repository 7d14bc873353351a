// Shared JSON-over-HTTP plumbing for upstream APIs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/oauth2"
)

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// APIService performs JSON requests against a single upstream base URL.
//
// Any status rejected by the caller's accept list is returned as a [shared.UpstreamError]
// carrying the status and body verbatim.
type APIService struct {
	service    string
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates an API service for the named upstream.
func NewAPIService(service, baseURL string, client *http.Client) *APIService {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the upstream base URL without a trailing slash.
func (a *APIService) BaseURL() string { return a.baseURL }

// apiRequest describes one call made through [APIService.Do].
type apiRequest struct {
	method     string
	path       string
	query      url.Values
	credential string
	body       any
	accept     []int // accepted statuses; any 2xx when empty
}

func (r apiRequest) accepts(status int) bool {
	if len(r.accept) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range r.accept {
		if s == status {
			return true
		}
	}
	return false
}

// Do performs the request and decodes an accepted response into result when result is non-nil.
func (a *APIService) Do(ctx context.Context, r apiRequest, result any) (*APIResponse, error) {
	fullURL := a.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if r.credential != "" {
		(&oauth2.Token{AccessToken: r.credential, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %w", shared.ErrServiceUnavailable, a.service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %w", shared.ErrAPIRequest, a.service, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if !r.accepts(resp.StatusCode) {
		return apiResp, &shared.UpstreamError{Service: a.service, Status: resp.StatusCode, Body: string(body)}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return apiResp, fmt.Errorf("%w: failed to decode %s response: %w", shared.ErrAPIRequest, a.service, err)
		}
	}

	return apiResp, nil
}
