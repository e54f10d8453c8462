package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/llm"
)

// ExtractFields implements llm.FieldExtractor using chat/completions in JSON mode.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ArticleFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"run_id", common.RunIDFromContext(ctx),
		"source_file", req.FilenameHint,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"known_categories", len(req.KnownMethods),
	)

	chatReq := goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.BuildSystemPrompt(req)},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildUserPrompt(req, c.cfg.MaxInputChars) + "\n\nReturn ONLY the JSON object."},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: temperature(c.cfg.Temperature),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.createWithRetry(ctx, rid, chatReq)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ArticleFields{}, nil, err
	}
	if len(resp.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ArticleFields{}, nil, fmt.Errorf("%w: no choices in openai response", llm.ErrMalformedResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	out, clean, err := llm.ParseArticleResponse(content, c.log)
	if err != nil {
		c.log.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err, "content", truncate(content, 2<<10),
			"finish_reason", resp.Choices[0].FinishReason,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ArticleFields{}, clean, err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"document", truncate(out.Document, 80),
		"tokens", resp.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, clean, nil
}

func (c *Client) createWithRetry(ctx context.Context, rid string, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	backoff := c.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return goopenai.ChatCompletionResponse{}, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.cfg.MaxRetries || !retryable(err) {
			return goopenai.ChatCompletionResponse{}, fmt.Errorf("openai chat completion: %w", err)
		}

		c.log.Warn("llm.extract.retry",
			"req_id", rid, "attempt", attempt+1, "backoff_ms", backoff.Milliseconds(), "error", err,
		)
		select {
		case <-ctx.Done():
			return goopenai.ChatCompletionResponse{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// temperature maps 0 to the smallest positive value; go-openai omits a zero
// temperature from the request, which the API reads as its default of 1.
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
