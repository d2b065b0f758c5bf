package classify

import (
	"context"
	"errors"
	"net/http"

	"github.com/joshua-takyi/eventhub/internal/apperr"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = openai.GPT4
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// OpenAIClassifier classifies events with a chat completion.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	prompt      string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // empty uses the public API
}

func NewOpenAIClassifier(cfg OpenAIConfig) *OpenAIClassifier {
	ocfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		ocfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClassifier{
		client:      openai.NewClientWithConfig(ocfg),
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		prompt:      SystemPrompt(Taxonomy),
	}
}

func (o *OpenAIClassifier) Classify(ctx context.Context, name, description, summary string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.prompt},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(name, description, summary)},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", classifyErr(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.New(apperr.KindParse, "Invalid response from OpenAI API")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := apperr.KindFetch
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			kind = apperr.KindAuth
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			kind = apperr.KindRateLimit
		case apiErr.HTTPStatusCode >= 500:
			kind = apperr.KindUnavailable
		}
		return &apperr.Error{Kind: kind, Status: apiErr.HTTPStatusCode, Message: "OpenAI API error", Detail: apiErr.Message, Err: err}
	}
	return apperr.Wrap(apperr.KindUnavailable, "OpenAI API error", err)
}
