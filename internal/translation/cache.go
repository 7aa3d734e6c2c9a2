package translation

import (
	"context"
	"sync"
)

// Cache stores translations keyed by text and target language
type Cache struct {
	mu           sync.RWMutex
	translations map[cacheKey]string
}

type cacheKey struct {
	text string
	lang string
}

// NewCache creates a new translation cache
func NewCache() *Cache {
	return &Cache{
		translations: make(map[cacheKey]string),
	}
}

// Add adds a translation to the cache
func (c *Cache) Add(text, lang, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.translations[cacheKey{text, lang}] = translation
}

// Get retrieves a translation from the cache
func (c *Cache) Get(text, lang string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	translation, ok := c.translations[cacheKey{text, lang}]
	return translation, ok
}

// Len returns the number of cached translations
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.translations)
}

// Cached memoizes successful translations of another translator
type Cached struct {
	inner Translator
	cache *Cache
}

// NewCached wraps inner with an in-memory cache
func NewCached(inner Translator) *Cached {
	return &Cached{inner: inner, cache: NewCache()}
}

// Translate implements Translator
func (c *Cached) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if out, ok := c.cache.Get(text, targetLang); ok {
		return out, nil
	}
	out, err := c.inner.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}
	if out != "" {
		c.cache.Add(text, targetLang, out)
	}
	return out, nil
}

// ListLanguages implements Translator
func (c *Cached) ListLanguages(ctx context.Context) ([]string, error) {
	return c.inner.ListLanguages(ctx)
}

// Name implements Translator
func (c *Cached) Name() string {
	return c.inner.Name()
}
