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


package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultBaseURL is the production Fireflies GraphQL endpoint.
const DefaultBaseURL = "https://api.fireflies.ai/graphql"

// ErrTranscriptNotFound is returned when the API has no transcript for an id.
var ErrTranscriptNotFound = errors.New("fireflies: transcript not found")

// Client talks to the Fireflies GraphQL API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the GraphQL endpoint, for tests and proxies.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxRetries sets the per-request retry limit.
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient creates a Fireflies API client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		logger:     slog.Default().With("component", "fireflies-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const transcriptQuery = `
query Transcript($transcriptId: String!) {
  transcript(id: $transcriptId) {
    id
    title
    date
    duration
    organizer_email
    participants
    transcript_url
    audio_url
    video_url
    summary {
      overview
      action_items
      keywords
    }
    sentences {
      speaker_name
      text
      start_time
      end_time
    }
  }
}`

const recentTranscriptsQuery = `
query Transcripts($limit: Int) {
  transcripts(limit: $limit) {
    id
    title
    date
    duration
    participants
  }
}`

// Transcript fetches one transcript by id, including sentences and summary.
// Returns ErrTranscriptNotFound when the API knows no such transcript.
func (c *Client) Transcript(ctx context.Context, id string) (*Transcript, error) {
	var out struct {
		Transcript *Transcript `json:"transcript"`
	}
	err := c.query(ctx, transcriptQuery, map[string]any{"transcriptId": id}, &out)
	if err != nil {
		return nil, err
	}
	if out.Transcript == nil {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, id)
	}
	return out.Transcript, nil
}

// RecentTranscripts lists the most recent transcripts visible to the API key.
// The returned records carry headers only; fetch each by id for sentences.
func (c *Client) RecentTranscripts(ctx context.Context, limit int) ([]*Transcript, error) {
	var out struct {
		Transcripts []*Transcript `json:"transcripts"`
	}
	err := c.query(ctx, recentTranscriptsQuery, map[string]any{"limit": limit}, &out)
	if err != nil {
		return nil, err
	}
	return out.Transcripts, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// query posts one GraphQL request and decodes data into out, retrying
// transient failures with exponential backoff.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("fireflies request failed", "err", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("fireflies: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("fireflies request rejected", "status", resp.StatusCode)
			return fmt.Errorf("fireflies: status %d", resp.StatusCode)
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []graphqlError  `json:"errors"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return backoff.Permanent(err)
		}
		if len(envelope.Errors) > 0 {
			return backoff.Permanent(fmt.Errorf("fireflies: %s", envelope.Errors[0].Message))
		}
		return json.Unmarshal(envelope.Data, out)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
