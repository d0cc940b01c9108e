package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/citetrace/internal/model"
)

// OpenAIProvider discovers sources by asking a chat model for relevant URLs
// in strict JSON. It is one vote in the consensus pool like any other
// provider, never a privileged one.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates an OpenAI-backed search provider. The name
// distinguishes multiple instances (different models act as separate
// consensus votes).
func NewOpenAIProvider(apiKey, baseURL, model, name string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if name == "" {
		name = "openai"
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		name:   name,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

type searchResponse struct {
	Results []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Snippet     string `json:"snippet"`
		PublishedAt string `json:"published_at"`
	} `json:"results"`
}

// Search asks the model for relevant sources as strict JSON.
func (p *OpenAIProvider) Search(ctx context.Context, query string, limit int) ([]model.ProviderResult, error) {
	if limit <= 0 {
		limit = 10
	}

	prompt := fmt.Sprintf(`Find up to %d web sources relevant to this query: %q

Respond with JSON only, in this exact shape:
{"results": [{"url": "...", "title": "...", "snippet": "...", "published_at": "2024-01-15"}]}

Rules:
- url must be a real, complete https URL
- snippet is a 1-2 sentence description of what the page covers
- published_at is YYYY-MM-DD or empty when unknown
- prefer primary and authoritative sources over aggregators`, limit, query)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a search engine. You return relevant source URLs as strict JSON and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI search: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var parsed searchResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	var out []model.ProviderResult
	for _, r := range parsed.Results {
		if len(out) >= limit {
			break
		}
		if !strings.HasPrefix(r.URL, "http") {
			continue
		}
		pr := model.ProviderResult{
			Provider: p.name,
			URL:      r.URL,
			Title:    r.Title,
			Snippet:  r.Snippet,
		}
		if ts, err := time.Parse("2006-01-02", r.PublishedAt); err == nil {
			pr.PublishedAt = &ts
		}
		out = append(out, pr)
	}
	return out, nil
}
