package ai

import (
	"context"
)

// Message is one turn of a conversation passed to the model for context.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Inferencer defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.)
// and for faking the model in tests.
type Inferencer interface {
	// Infer sends a single prompt and returns the model's text reply.
	Infer(ctx context.Context, prompt string) (string, error)

	// InferMessages sends a prompt preceded by prior conversation turns so the
	// model can resolve references like "same as before".
	InferMessages(ctx context.Context, history []Message, prompt string) (string, error)
}
