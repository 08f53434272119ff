package semantic

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrMissingAPIKey is returned when no OpenAI key is configured
	ErrMissingAPIKey = errors.New("openai api key is not configured")

	// ErrEmptyResponse is returned when the model sends back no choices or no content
	ErrEmptyResponse = errors.New("empty response from model")
)

// ChatClient is the subset of the OpenAI client used here.
// *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds configuration for the OpenAI integration
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Temperature       float32
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Model:             openai.GPT4oMini,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
		Temperature:       0.1,
	}
}

// NewClient creates an OpenAI chat client from cfg
func NewClient(cfg Config) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return openai.NewClientWithConfig(clientCfg), nil
}
