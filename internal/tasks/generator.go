package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

const systemPromptFormat = `You are a music recommendation assistant.
Given a description of what the listener wants, recommend exactly %[1]d real, released songs.
Respond with a single JSON object and nothing else: no prose, no markdown.
The object must have exactly one key, "recommendations", whose value is an array of exactly %[1]d objects.
Each object must have exactly two string fields: "title" (the song title) and "artist" (the primary performing artist).
Example: {"recommendations": [{"title": "Song Title", "artist": "Artist Name"}]}`

// SystemPrompt returns the instruction that fixes the output contract for count recommendations.
func SystemPrompt(count int) string {
	return fmt.Sprintf(systemPromptFormat, count)
}

// Generator turns a free-text prompt into song candidates via a [services.Completer].
type Generator struct {
	completer services.Completer
	bounds    models.Bounds
	logger    *log.Logger
}

// NewGenerator creates a generator that validates requests against bounds.
func NewGenerator(completer services.Completer, bounds models.Bounds, logger *log.Logger) *Generator {
	return &Generator{completer: completer, bounds: bounds, logger: orDiscard(logger)}
}

// Bounds returns the request limits this generator enforces.
func (g *Generator) Bounds() models.Bounds { return g.bounds }

// Generate asks for exactly count candidates matching prompt.
//
// The service is called once; there is no retry. A response that breaks the output
// contract is returned as a [shared.RecommendationFormatError].
func (g *Generator) Generate(ctx context.Context, prompt string, count int) ([]models.SongCandidate, error) {
	req := models.RecommendationRequest{Prompt: prompt, Count: count}
	if err := req.Validate(g.bounds); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if g.completer == nil {
		return nil, fmt.Errorf("%w: generative service not configured", shared.ErrServiceUnavailable)
	}

	g.logger.Debug("requesting recommendations", "service", g.completer.Name(), "count", count)

	raw, err := g.completer.Complete(ctx, SystemPrompt(count), strings.TrimSpace(prompt))
	if err != nil {
		return nil, err
	}

	candidates, err := ParseRecommendations(raw, count)
	if err != nil {
		g.logger.Warn("unusable recommendation response", "error", err, "raw", shared.Truncate(raw, 120))
		return nil, err
	}
	return candidates, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or without a json tag.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimPrefix(rest, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseRecommendations parses a generated response into exactly count candidates.
func ParseRecommendations(raw string, count int) ([]models.SongCandidate, error) {
	body := StripCodeFences(raw)
	if !json.Valid([]byte(body)) {
		return nil, &shared.RecommendationFormatError{Kind: shared.FormatUnparseable, Detail: shared.Truncate(body, 80)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, &shared.RecommendationFormatError{Kind: shared.FormatShape, Detail: "response is not an object", Err: err}
	}

	list, ok := envelope["recommendations"]
	if !ok {
		return nil, &shared.RecommendationFormatError{Kind: shared.FormatShape, Detail: `missing "recommendations" key`}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil || items == nil {
		return nil, &shared.RecommendationFormatError{Kind: shared.FormatShape, Detail: `"recommendations" is not an array of objects`, Err: err}
	}

	candidates := make([]models.SongCandidate, 0, len(items))
	for i, item := range items {
		title, err := stringField(item, "title")
		if err != nil {
			return nil, &shared.RecommendationFormatError{Kind: shared.FormatShape, Detail: fmt.Sprintf("item %d: %v", i, err)}
		}
		artist, err := stringField(item, "artist")
		if err != nil {
			return nil, &shared.RecommendationFormatError{Kind: shared.FormatShape, Detail: fmt.Sprintf("item %d: %v", i, err)}
		}
		candidates = append(candidates, models.SongCandidate{Title: title, Artist: artist})
	}

	if len(candidates) != count {
		return nil, &shared.RecommendationFormatError{Kind: shared.FormatCount, Expected: count, Got: len(candidates)}
	}
	return candidates, nil
}

func stringField(item map[string]json.RawMessage, key string) (string, error) {
	raw, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q is not a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%q is empty", key)
	}
	return s, nil
}
