// Package models lists the OpenAI models that can drive the chat completion
// translator, so users can pick a value for --openai-model.
package models
