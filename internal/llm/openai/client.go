package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/llm"
)

const maxRetryBackoff = 10 * time.Second

var _ llm.Adapter = (*Client)(nil)

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Adapt implements llm.Adapter with a single text-only chat/completions call.
// Each attempt runs under cfg.Timeout; transport errors, 429 and 5xx are retried.
func (c *Client) Adapt(ctx context.Context, req llm.AdaptRequest) (llm.AdaptResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.logger.Info("llm.adapt.start",
		"req_id", rid,
		"material_id", common.MaterialIDFromContext(ctx),
		"profile_id", common.ProfileIDFromContext(ctx),
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"system_len", len(req.SystemPrompt),
		"text_len", len(req.UserText),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserText},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	policy := common.RetryPolicy{
		MaxRetries: c.cfg.MaxRetries,
		Backoff:    c.cfg.RetryBackoff,
		MaxBackoff: maxRetryBackoff,
	}

	var raw []byte
	err := common.Retry(ctx, policy, "llm.adapt", c.logger, llm.IsRetryable, func(ctx context.Context) error {
		actx, cancel := common.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		r, _, sendErr := llm.SendJSON(actx, c.http, endpoint, body, headers, c.logger)
		if sendErr != nil {
			return sendErr
		}
		raw = r
		return nil
	})
	if err != nil {
		c.logger.Error("llm.adapt.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.AdaptResult{}, common.NewDomainError(common.ErrLLMInvocation, "chat completion request failed", err)
	}

	if err := llm.ValidateEnvelope(raw); err != nil {
		c.logger.Error("llm.adapt.schema_validation_failed",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.AdaptResult{}, common.NewDomainError(common.ErrLLMResponseFormat, "unexpected chat completion envelope", err)
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.adapt.decode_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.AdaptResult{}, common.NewDomainError(common.ErrLLMResponseFormat, "decode chat completion", err)
	}

	content := cc.Choices[0].Message.Content
	if content == nil || strings.TrimSpace(*content) == "" {
		c.logger.Warn("llm.adapt.passthrough",
			"req_id", rid,
			"reason", llm.ReasonEmptyContent,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.PassthroughFallback(req.OriginalText, llm.ReasonEmptyContent), nil
	}

	out := strings.TrimSpace(*content)
	c.logger.Info("llm.adapt.ok",
		"req_id", rid,
		"out_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Adapted(out), nil
}
