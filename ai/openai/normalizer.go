package openai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/scribelight/minutes/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ItemNormalizer implements ai.ItemNormalizer using OpenAI-compatible chat APIs.
type ItemNormalizer struct {
	client llms.Model
	logger *slog.Logger
}

// newItemNormalizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newItemNormalizer(config *ai.Config) (*ItemNormalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ItemNormalizer{
		client: client,
		logger: slog.Default().With("component", "openai-normalizer"),
	}, nil
}

// NewItemNormalizer creates a new item normalizer using the provided configuration.
//
// Returns ai.ItemNormalizer interface to enforce abstraction.
func NewItemNormalizer(config *ai.Config) (ai.ItemNormalizer, error) {
	return newItemNormalizer(config)
}

// NormalizeItems deduplicates the raw items and infers opportunities.
// An empty input short-circuits without a model call.
func (n *ItemNormalizer) NormalizeItems(ctx context.Context, input *ai.RawItems) (*ai.NormalizedItems, error) {
	if input.Empty() {
		return &ai.NormalizedItems{}, nil
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var result ai.NormalizedItems
	err = generateJSON(ctx, n.client, n.logger, buildNormalizationPrompt(), string(payload), &result)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("normalized items",
		"decisions", len(result.Decisions),
		"risks", len(result.Risks),
		"tasks", len(result.Tasks),
		"opportunities", len(result.Opportunities))
	return &result, nil
}
