package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/citetrace/internal/model"
)

// OpenAIComposer writes the answer with a single synchronous chat call. The
// model must cite only the offered source ids; unknown ids are stripped
// during evidence linking rather than retried here.
type OpenAIComposer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIComposer creates a composer backed by the OpenAI chat API.
func NewOpenAIComposer(apiKey, baseURL, chatModel string, timeout time.Duration) (*OpenAIComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIComposer{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   chatModel,
		timeout: timeout,
	}, nil
}

// Name returns the composer model name.
func (c *OpenAIComposer) Name() string {
	return c.model
}

type composerResponse struct {
	AnswerText string `json:"answer_text"`
	Sentences  []struct {
		Text      string   `json:"text"`
		SourceIDs []string `json:"source_ids"`
	} `json:"sentences"`
}

// Compose generates the cited answer.
func (c *OpenAIComposer) Compose(ctx context.Context, req Request) (*model.Answer, error) {
	sources := selectedSources(req)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to compose from")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You write concise, factual answers grounded strictly in the provided sources. " +
					"Every sentence lists the ids of the sources supporting it. " +
					"You never cite a source id that was not provided. You respond with strict JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req.Query, sources),
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compose answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from composer")
	}

	var parsed composerResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse composer response: %w", err)
	}
	if strings.TrimSpace(parsed.AnswerText) == "" {
		return nil, fmt.Errorf("composer returned empty answer")
	}

	answer := &model.Answer{Text: parsed.AnswerText}
	for _, s := range parsed.Sentences {
		answer.Sentences = append(answer.Sentences, model.AnswerSentence{
			Text:      s.Text,
			SourceIDs: s.SourceIDs,
		})
	}
	return answer, nil
}

func buildPrompt(query string, sources []*model.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSources:\n", query)
	for _, src := range sources {
		snippet := src.Passage.BestSnippet
		if snippet == "" {
			snippet = src.Snippet
		}
		fmt.Fprintf(&b, "\n[%s] %s (%s)\n%s\n", src.SourceID, src.Title, src.Domain, snippet)
	}
	b.WriteString(`
Write a 3-6 sentence answer using only these sources. Respond with JSON in this exact shape:
{"answer_text": "full answer", "sentences": [{"text": "one sentence", "source_ids": ["src_..."]}]}

Rules:
- every sentence of answer_text appears once in sentences, in order
- source_ids holds the ids supporting that sentence; use [] when none apply
- never invent source ids`)
	return b.String()
}
