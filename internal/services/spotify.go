// Spotify Web API client
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"
	defaultMarket  = "US"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// Profile converts the user into the account identity used for playlist creation.
func (u SpotifyUser) Profile() *models.Profile {
	return &models.Profile{ID: u.ID, DisplayName: u.DisplayName}
}

// Matched converts the track into the catalog match handed to the resolver.
//
// The artist is the first listed artist.
func (t SpotifyTrack) Matched() models.MatchedTrack {
	m := models.MatchedTrack{ID: t.ID, Title: t.Name, URI: t.URI}
	if len(t.Artists) > 0 {
		m.Artist = t.Artists[0].Name
	}
	return m
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist as returned on creation.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Owner        Owner        `json:"owner"`
	Public       bool         `json:"public"`
	ExternalURLs externalURLs `json:"external_urls"`
	URI          string       `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

type createPlaylistBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksBody struct {
	URIs []string `json:"uris"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// SpotifyService talks to the Spotify Web API on behalf of a caller-supplied bearer credential.
//
// The service holds no credential of its own; every method takes the token explicitly.
type SpotifyService struct {
	api    *APIService
	market string
}

// NewSpotifyService creates a Spotify client. An empty baseURL uses the public API and an empty market uses US.
func NewSpotifyService(baseURL, market string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if market == "" {
		market = defaultMarket
	}

	return &SpotifyService{
		api:    NewAPIService("spotify", baseURL, client),
		market: market,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Market returns the market code sent with every search.
func (s *SpotifyService) Market() string { return s.market }

// SearchTracks runs a track search and returns up to limit matches in catalog order.
func (s *SpotifyService) SearchTracks(ctx context.Context, credential, query string, limit int) ([]models.MatchedTrack, error) {
	if limit <= 0 {
		limit = 1
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("market", s.market)

	var response spotifySearchResponse
	if _, err := s.api.Do(ctx, apiRequest{
		method:     http.MethodGet,
		path:       "/search",
		query:      q,
		credential: credential,
	}, &response); err != nil {
		return nil, err
	}

	matches := make([]models.MatchedTrack, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		matches = append(matches, item.Matched())
	}
	return matches, nil
}

// UserProfile retrieves the full profile the credential belongs to.
func (s *SpotifyService) UserProfile(ctx context.Context, credential string) (*SpotifyUser, error) {
	var user SpotifyUser
	if _, err := s.api.Do(ctx, apiRequest{
		method:     http.MethodGet,
		path:       "/me",
		credential: credential,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the account identity the credential belongs to.
func (s *SpotifyService) CurrentUser(ctx context.Context, credential string) (*models.Profile, error) {
	user, err := s.UserProfile(ctx, credential)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: spotify profile has no id", shared.ErrAPIRequest)
	}
	return user.Profile(), nil
}

// CreatePlaylist creates a public playlist owned by userID and returns its id. Only 201 Created counts as success.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, credential, userID, name, description string) (string, error) {
	var playlist SpotifyPlaylist
	if _, err := s.api.Do(ctx, apiRequest{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID)),
		credential: credential,
		body:       createPlaylistBody{Name: name, Description: description, Public: true},
		accept:     []int{http.StatusCreated},
	}, &playlist); err != nil {
		return "", err
	}
	if playlist.ID == "" {
		return "", fmt.Errorf("%w: spotify returned a playlist without an id", shared.ErrAPIRequest)
	}
	return playlist.ID, nil
}

// AddTracks attaches the given track ids to a playlist in one request and returns the snapshot id.
//
// An empty id list is still submitted.
func (s *SpotifyService) AddTracks(ctx context.Context, credential, playlistID string, trackIDs []string) (string, error) {
	var snapshot snapshotResponse
	if _, err := s.api.Do(ctx, apiRequest{
		method:     http.MethodPost,
		path:       fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID)),
		credential: credential,
		body:       addTracksBody{URIs: TrackURIs(trackIDs)},
		accept:     []int{http.StatusOK, http.StatusCreated},
	}, &snapshot); err != nil {
		return "", err
	}
	return snapshot.SnapshotID, nil
}

// TrackURIs converts bare track ids to spotify:track URIs, trimming surrounding whitespace.
//
// Order and duplicates are preserved; the result is never nil.
func TrackURIs(trackIDs []string) []string {
	uris := make([]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		uris = append(uris, "spotify:track:"+strings.TrimSpace(id))
	}
	return uris
}
