// Package translation wraps interchangeable machine translation backends
// (OpenAI, Gemini, an external shell tool) behind a single Translator
// interface, with optional circuit breaking, fallback and caching, and
// builds the pool of target languages a run draws from.
package translation
