package llm

import (
	"context"

	"github.com/joseph-ayodele/material-adapter/constants"
)

// AdaptRequest is one adaptation call: a system prompt built from the
// profile rules and the user turn carrying the original text.
type AdaptRequest struct {
	SystemPrompt string
	UserText     string
	// OriginalText is returned unchanged when the model yields no content.
	OriginalText string
}

// Passthrough reasons.
const (
	ReasonEmptyContent = "empty_content"
)

// AdaptResult distinguishes a real rewrite from a passthrough fallback.
type AdaptResult struct {
	Outcome constants.AdaptOutcome
	Text    string
	Reason  string // set only for PASSTHROUGH
}

func Adapted(text string) AdaptResult {
	return AdaptResult{Outcome: constants.OutcomeAdapted, Text: text}
}

func PassthroughFallback(original, reason string) AdaptResult {
	return AdaptResult{Outcome: constants.OutcomePassthrough, Text: original, Reason: reason}
}

// IsPassthrough reports whether the original text was returned unmodified.
func (r AdaptResult) IsPassthrough() bool {
	return r.Outcome == constants.OutcomePassthrough
}

// Adapter is the interface the batch pipeline depends on.
type Adapter interface {
	Adapt(ctx context.Context, req AdaptRequest) (AdaptResult, error)
}
