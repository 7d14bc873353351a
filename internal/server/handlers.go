package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error      string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	PlaylistID string `json:"playlist_id,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

// APIHandler serves the generation and playlist endpoints over an [tasks.Engine].
//
// The Spotify credential is taken from the Authorization header on every request.
type APIHandler struct {
	engine       tasks.Engine
	defaultCount int
	logger       *log.Logger
}

// NewAPIHandler creates an APIHandler. defaultCount is used when a request omits count.
func NewAPIHandler(engine tasks.Engine, defaultCount int, logger *log.Logger) *APIHandler {
	return &APIHandler{engine: engine, defaultCount: defaultCount, logger: logger}
}

func (h *APIHandler) Routes() []string {
	return []string{"/generate", "/playlist"}
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	switch r.URL.Path {
	case "/generate":
		h.generate(w, r)
	case "/playlist":
		h.createPlaylist(w, r)
	default:
		writeError(w, http.StatusNotFound, errorResponse{Error: "not found"})
	}
}

func (h *APIHandler) generate(w http.ResponseWriter, r *http.Request) {
	credential, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var body generateRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if body.Count == 0 {
		body.Count = h.defaultCount
	}

	result, err := h.engine.GenerateAndResolve(r.Context(), nil, models.RecommendationRequest{Prompt: body.Prompt, Count: body.Count}, credential)
	if err != nil {
		writeError(w, generateStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	credential, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var body models.PlaylistCreationRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.engine.CreatePlaylist(r.Context(), nil, body, credential)
	if err != nil {
		status, resp := playlistFailure(err)
		writeError(w, status, resp)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// generateStatus maps a generation failure to a response status.
func generateStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// playlistFailure maps an assembly failure to a status and body, propagating the upstream status when there is one.
func playlistFailure(err error) (int, errorResponse) {
	if errors.Is(err, shared.ErrInvalidInput) {
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	resp := errorResponse{Error: err.Error()}
	status := http.StatusBadGateway

	var pe *tasks.PlaylistError
	if errors.As(err, &pe) {
		resp.Stage = pe.Stage.String()
		resp.PlaylistID = pe.PlaylistID
		if s := pe.Status(); s >= 400 && s < 600 {
			status = s
		}
	}
	return status, resp
}

// HealthHandler reports liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}

// New builds the routed, middleware-wrapped handler for the service.
func New(engine tasks.Engine, defaultCount int, logger *log.Logger) http.Handler {
	router := NewBasicRouter()
	router.Use(RequestIDMiddleware(), LoggingMiddleware(logger), RecoverMiddleware(logger))

	router.Handle(http.MethodGet, "/health", HealthHandler())
	router.Handler(NewAPIHandler(engine, defaultCount, logger))

	return router
}
