// Package llm implements the chunked summarization and keyword-extraction
// pipeline against an OpenAI-compatible chat-completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"ytnotes/retry"
)

// completionTemperature is fixed for every model call; summaries should be
// stable, not creative.
const completionTemperature = 0.3

// perChunkKeywordCap bounds how many keywords are requested per chunk before
// merging.
const perChunkKeywordCap = 10

// SummaryRequest asks for a markdown summary of a transcript. Template, when
// set, extends the standard instructional prompt.
type SummaryRequest struct {
	Transcript string
	Template   string
}

// KeywordsRequest asks for up to MaxKeywords keywords describing a transcript.
// A zero MaxKeywords means the default of 20.
type KeywordsRequest struct {
	Transcript  string
	MaxKeywords int
}

// completer abstracts the chat-completion call so the pipeline can be tested
// without a live endpoint.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client drives summarization and keyword extraction. The model's Profile,
// resolved once at construction, governs both the per-call timeout and the
// transcript size above which chunking kicks in.
type Client struct {
	api      completer
	model    string
	profile  Profile
	splitter *Splitter
	retryCfg retry.Config
	log      *logrus.Logger
}

// ClientConfig carries the construction parameters for a Client.
type ClientConfig struct {
	// Endpoint is the base URL of the OpenAI-compatible API.
	Endpoint string
	// APIKey may be empty for local endpoints; a placeholder is sent instead.
	APIKey string
	// Model is the model name for every request.
	Model string
	// ChunkOverlap is the character overlap between consecutive chunks.
	ChunkOverlap int
	// Retry configures backoff for every model call.
	Retry retry.Config
}

// NewClient builds a Client for the configured model. It fails when the chunk
// overlap is not smaller than the model's transcript budget, since that would
// stall the chunking window.
func NewClient(cfg ClientConfig) (*Client, error) {
	profile := LookupProfile(cfg.Model)

	splitter, err := NewSplitter(profile.MaxTranscriptChars, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunking config for model %s: %w", cfg.Model, err)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// The upstream client rejects empty keys; local endpoints ignore it.
		apiKey = "sk-dummy-key"
	}

	apiCfg := openai.DefaultConfig(apiKey)
	apiCfg.BaseURL = cfg.Endpoint
	apiCfg.HTTPClient = &http.Client{Timeout: profile.Timeout}

	return &Client{
		api:      openai.NewClientWithConfig(apiCfg),
		model:    cfg.Model,
		profile:  profile,
		splitter: splitter,
		retryCfg: cfg.Retry,
		log:      logrus.StandardLogger(),
	}, nil
}

// Profile returns the resolved model profile.
func (c *Client) Profile() Profile {
	return c.profile
}

// Summarize produces a markdown summary of the transcript. It never returns an
// error: any failure degrades to an inline error note so one video's model
// failure cannot abort batch processing.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) string {
	logger := c.log.WithFields(logrus.Fields{"model": c.model, "transcript_chars": len(req.Transcript)})

	if len(req.Transcript) <= c.profile.MaxTranscriptChars {
		logger.Debug("transcript fits model budget, single-shot summary")
		out, err := c.complete(ctx, req.Transcript, summaryPrompt(req.Template))
		if err != nil {
			logger.WithError(err).Error("summary generation failed")
			return summaryFailure(err)
		}
		return out
	}

	chunks := c.splitter.Split(req.Transcript)
	logger.WithField("chunks", len(chunks)).Info("transcript over model budget, using chunked summarization")

	sections := make([]string, len(chunks))
	for i, chunk := range chunks {
		out, err := c.complete(ctx, chunk, sectionPrompt(i+1, len(chunks)))
		if err != nil {
			// One failing chunk never aborts the others.
			logger.WithError(err).WithField("section", i+1).Warn("section summary failed")
			out = fmt.Sprintf("*Error summarizing this section: %v*", err)
		}
		sections[i] = out
	}

	if len(chunks) == 1 {
		return sections[0]
	}

	var body strings.Builder
	for i, section := range sections {
		fmt.Fprintf(&body, "## Section %d\n\n%s\n\n", i+1, section)
	}
	sectionText := strings.TrimRight(body.String(), "\n")

	meta, err := c.complete(ctx, sectionText, metaPrompt(len(chunks)))
	if err != nil {
		// Fall back to the concatenated sections; no further nesting.
		logger.WithError(err).Warn("meta-summary failed, returning section summaries only")
		return sectionText
	}

	return fmt.Sprintf("## Overall Summary\n\n%s\n\n%s", meta, sectionText)
}

// ExtractKeywords returns up to req.MaxKeywords keywords for the transcript,
// case-insensitively de-duplicated with the first-seen casing preserved.
// Failures degrade to an empty list and never block note creation.
func (c *Client) ExtractKeywords(ctx context.Context, req KeywordsRequest) []string {
	max := req.MaxKeywords
	if max <= 0 {
		max = 20
	}
	logger := c.log.WithFields(logrus.Fields{"model": c.model, "max_keywords": max})

	if len(req.Transcript) <= c.profile.MaxTranscriptChars {
		out, err := c.complete(ctx, req.Transcript, keywordsPrompt(max))
		if err != nil {
			logger.WithError(err).Warn("keyword extraction failed")
			return nil
		}
		return truncateKeywords(dedupeKeywords(parseKeywords(out)), max)
	}

	chunks := c.splitter.Split(req.Transcript)
	perChunk := max
	if perChunk > perChunkKeywordCap {
		perChunk = perChunkKeywordCap
	}

	var merged []string
	for i, chunk := range chunks {
		out, err := c.complete(ctx, chunk, keywordsPrompt(perChunk))
		if err != nil {
			logger.WithError(err).WithField("section", i+1).Warn("chunk keyword extraction failed")
			continue
		}
		merged = append(merged, parseKeywords(out)...)
	}

	return truncateKeywords(dedupeKeywords(merged), max)
}

// complete issues one chat-completion call with retry. The transcript slice
// travels as system content, the instruction as the user message.
func (c *Client) complete(ctx context.Context, transcript, instruction string) (string, error) {
	var content string

	err := retry.Do(ctx, c.retryCfg, classifyModelError, func(ctx context.Context) error {
		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: completionTemperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: transcript},
				{Role: openai.ChatMessageRoleUser, Content: instruction},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("model returned no choices")
		}

		c.log.WithFields(logrus.Fields{
			"model":   c.model,
			"tokens":  resp.Usage.TotalTokens,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Debug("model call succeeded")

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// classifyModelError maps endpoint failures onto the closed retryable set:
// rate limits, upstream 5xx, and transport errors retry; everything else
// (malformed requests, auth failures) is terminal.
func classifyModelError(err error) retry.Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return retry.KindRateLimited
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return retry.KindUpstream
		}
		return retry.KindTerminal
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return retry.KindRateLimited
		case reqErr.HTTPStatusCode >= http.StatusInternalServerError:
			return retry.KindUpstream
		}
		return retry.KindTerminal
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return retry.KindConnection
	}
	// A request timeout is a transient failure, not a cancellation signal.
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindConnection
	}

	return retry.KindTerminal
}

// summaryFailure renders the degraded summary emitted when all retries are
// exhausted or the failure is terminal.
func summaryFailure(err error) string {
	return fmt.Sprintf("## Error Generating Summary\n\n**%T**: %v", err, err)
}

// dedupeKeywords removes case-insensitive duplicates, keeping the casing of
// the first occurrence.
func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	var out []string
	for _, kw := range keywords {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func truncateKeywords(keywords []string, max int) []string {
	if len(keywords) > max {
		return keywords[:max]
	}
	return keywords
}
