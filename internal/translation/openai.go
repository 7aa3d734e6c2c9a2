package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const translatePrompt = "You are a translation engine. Translate the user's text into the language with the code '%s'. " +
	"Keep placeholders such as %%s, %%1$s and formatting codes unchanged. Respond with only the translation, nothing else."

// OpenAITranslator translates with the OpenAI chat completion API
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAITranslator creates a new OpenAI translator. An empty baseURL uses
// the public API; an empty model uses gpt-4o-mini.
func NewOpenAITranslator(apiKey, baseURL, model string) *OpenAITranslator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

// Translate translates text into targetLang
func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(translatePrompt, targetLang),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", ErrEmptyResult
	}
	return translation, nil
}

// ListLanguages returns the built-in language list; the chat API has no
// language catalog of its own
func (t *OpenAITranslator) ListLanguages(context.Context) ([]string, error) {
	return DefaultLanguages(), nil
}

// Name returns the backend name
func (t *OpenAITranslator) Name() string {
	return BackendOpenAI
}
