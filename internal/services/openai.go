// OpenAI-compatible chat completions client
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/tunesmith/internal/shared"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	defaultModel  = "gpt-4o"
)

// ChatMessage is one message in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// OpenAIService sends chat completions with a fixed model and API key.
type OpenAIService struct {
	api    *APIService
	apiKey string
	model  string
}

// NewOpenAIService creates a chat completions client. Empty baseURL and model fall back to the public API and gpt-4o.
func NewOpenAIService(apiKey, baseURL, model string, client *http.Client) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api_key", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	return &OpenAIService{
		api:    NewAPIService("openai", baseURL, client),
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (o *OpenAIService) Name() string {
	return "OpenAI"
}

// Model returns the model name sent with each completion.
func (o *OpenAIService) Model() string { return o.model }

// Complete sends a system instruction and a user message and returns the first choice's content.
//
// No sampling parameters are sent; the service defaults apply.
func (o *OpenAIService) Complete(ctx context.Context, system, user string) (string, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var response chatResponse
	if _, err := o.api.Do(ctx, apiRequest{
		method:     http.MethodPost,
		path:       "/chat/completions",
		credential: o.apiKey,
		body:       body,
	}, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", shared.ErrAPIRequest)
	}

	return response.Choices[0].Message.Content, nil
}
