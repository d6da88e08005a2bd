package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultModel = "gemini-2.0-flash"

	// maxAttempts bounds the transient-failure retry loop. Callers always get
	// either text or ErrExhausted; raw transport errors never escape.
	maxAttempts = 5
	baseDelay   = 500 * time.Millisecond

	// refreshSkew renews a credential slightly before its stated expiry.
	refreshSkew = 5 * time.Minute
)

// ErrExhausted is returned after the retry budget is spent.
var ErrExhausted = errors.New("inference failed")

// Credential is an access token with an optional expiry.
// A zero ExpiresAt means the token never expires (plain API keys).
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// CredentialSource produces a fresh credential on demand. It is called once at
// startup and again whenever the cached credential expires.
type CredentialSource func(ctx context.Context) (Credential, error)

// StaticKey wraps a plain API key as a never-expiring CredentialSource.
func StaticKey(key string) CredentialSource {
	return func(context.Context) (Credential, error) {
		return Credential{Token: key}, nil
	}
}

// Client talks to Google's Gemini models. The credential cache is shared and
// mutex-guarded: the underlying genai client is rebuilt lazily when the cached
// token expires.
type Client struct {
	source    CredentialSource
	modelName string
	log       *zap.Logger

	mu     sync.Mutex
	cred   Credential
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient initializes a Gemini client and verifies the credential source
// by performing the first refresh eagerly.
func NewClient(ctx context.Context, source CredentialSource, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{source: source, modelName: defaultModel, log: log}
	if _, err := c.generativeModel(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Close cleans up the underlying genai client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
		c.model = nil
	}
}

// Infer sends a single prompt and returns the model's text reply, retrying
// transient failures up to maxAttempts.
func (c *Client) Infer(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	return c.generate(ctx, func(ctx context.Context, model *genai.GenerativeModel) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(prompt))
	})
}

// InferMessages sends a prompt with prior conversation turns as chat history.
func (c *Client) InferMessages(ctx context.Context, history []Message, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return c.generate(ctx, func(ctx context.Context, model *genai.GenerativeModel) (*genai.GenerateContentResponse, error) {
		cs := model.StartChat()
		cs.History = contents
		return cs.SendMessage(ctx, genai.Text(prompt))
	})
}

func (c *Client) generate(ctx context.Context, send func(context.Context, *genai.GenerativeModel) (*genai.GenerateContentResponse, error)) (string, error) {
	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		model, err := c.generativeModel(ctx)
		if err != nil {
			lastErr = err
		} else {
			resp, err := send(ctx, model)
			if err != nil {
				lastErr = fmt.Errorf("gemini generation error: %w", err)
			} else if text, err := responseText(resp); err != nil {
				lastErr = err
			} else {
				return text, nil
			}
		}

		if attempt < maxAttempts {
			c.log.Warn("inference attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrExhausted, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrExhausted, maxAttempts, lastErr)
}

// generativeModel returns a model handle backed by a current credential,
// rebuilding the underlying client when the cached token has expired.
func (c *Client) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil && !credentialExpired(c.cred, time.Now()) {
		return c.model, nil
	}

	cred, err := c.source(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh credential: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cred.Token))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	if c.client != nil {
		c.client.Close()
	}
	c.cred = cred
	c.client = client

	model := client.GenerativeModel(c.modelName)
	// Creative but structured output; extraction prompts pin the format themselves.
	model.SetTemperature(0.4)
	c.model = model
	return model, nil
}

func credentialExpired(cred Credential, now time.Time) bool {
	if cred.ExpiresAt.IsZero() {
		return false
	}
	return now.After(cred.ExpiresAt.Add(-refreshSkew))
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates from Gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
