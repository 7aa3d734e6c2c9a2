package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// model ids containing one of these are not chat models
var nonChatMarkers = []string{"tts", "audio", "realtime", "transcribe", "dall-e", "image", "embedding", "whisper", "moderation", "search"}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL uses the public API.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// TranslationModels returns the sorted chat model ids and the number of
// other models the key can see
func (l *Lister) TranslationModels(ctx context.Context) ([]string, int, error) {
	if l.apiKey == "" {
		return nil, 0, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .telephone.yaml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list models: %w", err)
	}

	var chat []string
	for _, m := range list.Models {
		if isChatModel(m.ID) {
			chat = append(chat, m.ID)
		}
	}
	sort.Strings(chat)
	return chat, len(list.Models) - len(chat), nil
}

// PrintModels writes the chat models to w
func (l *Lister) PrintModels(ctx context.Context, w io.Writer) error {
	chat, others, err := l.TranslationModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat models usable for translation:")
	if len(chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, id := range chat {
		fmt.Fprintf(w, "  %s\n", id)
	}
	if others > 0 {
		fmt.Fprintf(w, "  ... and %d other models\n", others)
	}
	return nil
}

func isChatModel(id string) bool {
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	return strings.HasPrefix(id, "gpt-") || strings.HasPrefix(id, "chatgpt") ||
		(len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9')
}
