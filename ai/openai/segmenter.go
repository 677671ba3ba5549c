// Copyright 2026 Scribelight
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scribelight/minutes/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Segmenter implements ai.Segmenter using OpenAI-compatible chat APIs.
type Segmenter struct {
	client   llms.Model
	maxChars int
	logger   *slog.Logger
}

// newSegmenter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSegmenter(config *ai.Config) (*Segmenter, error) {
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

	return &Segmenter{
		client:   client,
		maxChars: config.MaxTranscriptChars,
		logger:   slog.Default().With("component", "openai-segmenter"),
	}, nil
}

// NewSegmenter creates a new segmenter using the provided configuration.
//
// Returns ai.Segmenter interface to enforce abstraction.
func NewSegmenter(config *ai.Config) (ai.Segmenter, error) {
	return newSegmenter(config)
}

// SegmentTranscript asks the model for topical segments over the numbered
// transcript. Over-long transcripts are truncated to the configured excerpt
// size; the model still reports ranges against the full line count and the
// caller's partition repair extends the final segment over the cut tail.
func (s *Segmenter) SegmentTranscript(ctx context.Context, transcript string, lineCount int) (*ai.SegmentationResult, error) {
	if lineCount <= 0 {
		return nil, errors.New("segmenter: transcript has no lines")
	}

	excerpt := truncate(transcript, s.maxChars)
	if len(excerpt) < len(transcript) {
		s.logger.Warn("transcript truncated for segmentation",
			"chars", len(transcript), "limit", s.maxChars)
	}

	var result ai.SegmentationResult
	err := generateJSON(ctx, s.client, s.logger, buildSegmentationPrompt(lineCount), excerpt, &result)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("segmented transcript",
		"lines", lineCount, "segments", len(result.Segments))
	return &result, nil
}
