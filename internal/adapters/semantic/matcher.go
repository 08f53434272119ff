// Package semantic provides an OpenAI-backed matcher.SemanticMatcher.
//
// Both operations use JSON-mode chat completions. Requests are paced with a
// token-bucket limiter, and classifications are remembered by description so
// recurring fees and interest lines skip the model on later runs.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// ErrMalformedResponse is returned when the model's JSON lacks the expected fields
var ErrMalformedResponse = errors.New("malformed model response")

// Matcher implements matcher.SemanticMatcher on top of a chat client
type Matcher struct {
	client      ChatClient
	model       string
	temperature float32
	limiter     *rate.Limiter
	cache       Cache
	logger      *slog.Logger
}

var _ matcher.SemanticMatcher = (*Matcher)(nil)

// New creates a Matcher talking to OpenAI. It fails with ErrMissingAPIKey
// when cfg carries no key.
func New(cfg Config, logger *slog.Logger) (*Matcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewMatcher(client, cfg, NewMemoryCache(), logger), nil
}

// NewMatcher creates a Matcher over an existing client. cache may be nil.
func NewMatcher(client ChatClient, cfg Config, cache Cache, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Matcher{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, 1),
		cache:       cache,
		logger:      logger,
	}
}

type matchResponse struct {
	Matches []struct {
		SourceAIdx   *int    `json:"sourceAIdx"`
		SourceBIdx   *int    `json:"sourceBIdx"`
		Confidence   float64 `json:"confidence"`
		Reasoning    string  `json:"reasoning"`
		SignInverted bool    `json:"signInverted"`
	} `json:"matches"`
}

type classifyResponse struct {
	Classifications []struct {
		Source   string           `json:"source"`
		RowIndex *int             `json:"rowIndex"`
		Category matcher.Category `json:"category"`
		Reason   string           `json:"reason"`
	} `json:"classifications"`
}

// BatchMatch asks the model to pair the rows of one batch.
// Entries without both indices are dropped; a body without a matches list
// yields no pairs.
func (m *Matcher) BatchMatch(ctx context.Context, req matcher.BatchMatchRequest) ([]matcher.MatchPair, error) {
	if len(req.RowsA) == 0 || len(req.RowsB) == 0 {
		return []matcher.MatchPair{}, nil
	}

	prompt, err := buildMatchPrompt(req)
	if err != nil {
		return nil, err
	}

	content, err := m.complete(ctx, matchSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var resp matchResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse match response: %w", err)
	}

	pairs := make([]matcher.MatchPair, 0, len(resp.Matches))
	for _, p := range resp.Matches {
		if p.SourceAIdx == nil || p.SourceBIdx == nil {
			continue
		}
		pairs = append(pairs, matcher.MatchPair{
			SourceAIndex: *p.SourceAIdx,
			SourceBIndex: *p.SourceBIdx,
			Confidence:   normaliseConfidence(p.Confidence),
			Method:       matcher.MethodFuzzyAI,
			Reasoning:    p.Reasoning,
			SignInverted: p.SignInverted,
		})
	}

	m.logger.Debug("batch match complete",
		"rows_a", len(req.RowsA),
		"rows_b", len(req.RowsB),
		"proposed", len(pairs))

	return pairs, nil
}

// Classify labels unmatched rows. Cached descriptions are answered locally
// and only the rest go to the model.
func (m *Matcher) Classify(ctx context.Context, req matcher.ClassifyRequest) ([]matcher.ExceptionClassification, error) {
	out := make([]matcher.ExceptionClassification, 0, len(req.Items))

	var pending []matcher.UnmatchedItem
	for _, item := range req.Items {
		if label, ok := m.cached(item); ok {
			out = append(out, matcher.ExceptionClassification{
				Category: label.Category,
				Reason:   label.Reason,
				Source:   item.Source,
				RowIndex: item.RowIndex,
			})
			continue
		}
		pending = append(pending, item)
	}

	if len(pending) == 0 {
		m.logger.Debug("classification served from cache", "items", len(out))
		return out, nil
	}

	prompt, err := buildClassifyPrompt(pending, req.SourceALabel, req.SourceBLabel)
	if err != nil {
		return nil, err
	}

	content, err := m.complete(ctx, classifySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var resp classifyResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	if resp.Classifications == nil {
		return nil, fmt.Errorf("%w: no classifications list", ErrMalformedResponse)
	}

	type key struct {
		side  matcher.Side
		index int
	}
	sent := make(map[key]matcher.UnmatchedItem, len(pending))
	for _, item := range pending {
		sent[key{item.Source, item.RowIndex}] = item
	}

	for _, c := range resp.Classifications {
		if c.RowIndex == nil {
			continue
		}
		side := matcher.Side(strings.ToUpper(strings.TrimSpace(c.Source)))
		classification := matcher.ExceptionClassification{
			Category: c.Category,
			Reason:   strings.TrimSpace(c.Reason),
			Source:   side,
			RowIndex: *c.RowIndex,
		}
		out = append(out, classification)

		if item, ok := sent[key{side, *c.RowIndex}]; ok && c.Category.Valid() {
			m.remember(item, Label{Category: classification.Category, Reason: classification.Reason})
		}
	}

	m.logger.Debug("classification complete",
		"requested", len(pending),
		"returned", len(resp.Classifications))

	return out, nil
}

func (m *Matcher) cached(item matcher.UnmatchedItem) (Label, bool) {
	if m.cache == nil {
		return Label{}, false
	}
	k := cacheKey(item)
	if k == "" {
		return Label{}, false
	}
	return m.cache.Get(k)
}

func (m *Matcher) remember(item matcher.UnmatchedItem, label Label) {
	if m.cache == nil {
		return
	}
	if k := cacheKey(item); k != "" {
		m.cache.Set(k, label)
	}
}

// complete runs one JSON-mode chat completion and returns the message content
func (m *Matcher) complete(ctx context.Context, system, user string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	m.logger.Debug("chat completion",
		"model", m.model,
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return content, nil
}

// normaliseConfidence clamps c to 0-100. Only a fraction strictly below 1
// is read as a 0-1 score; 1 itself means 1 on the 0-100 scale the prompt asks for.
func normaliseConfidence(c float64) int {
	if c > 0 && c < 1 {
		c *= 100
	}
	return int(math.Max(0, math.Min(100, math.Round(c))))
}
