package translation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiTranslator translates with the Google Gemini API
type GeminiTranslator struct {
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a new Gemini translator
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiTranslator{model: model, client: client}, nil
}

// Translate translates text into targetLang
func (t *GeminiTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	prompt := fmt.Sprintf(translatePrompt, targetLang) + "\n\n" + text

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", ErrEmptyResult
	}
	return translation, nil
}

// ListLanguages returns the built-in language list
func (t *GeminiTranslator) ListLanguages(context.Context) ([]string, error) {
	return DefaultLanguages(), nil
}

// Name returns the backend name
func (t *GeminiTranslator) Name() string {
	return BackendGemini
}
