// Package gateway obtains assistant replies from the configured completion
// providers. The fallback chain is an explicit state machine: every path
// yields a tagged Outcome, and no provider failure crosses this boundary as
// an error.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"

	"github.com/a6arsh/Chatbot-yellow/internal/compose"
	"github.com/a6arsh/Chatbot-yellow/internal/llm"
	"github.com/a6arsh/Chatbot-yellow/internal/logger"
)

// Chain states.
type chainState stateless.State

var (
	stateTryPrimary    chainState = "TryPrimary"
	stateTrySecondary  chainState = "TrySecondaryVision"
	stateRetryTextOnly chainState = "RetryTextOnly"
	stateResolved      chainState = "Resolved"    // terminal: provider reply obtained
	stateUnsupported   chainState = "Unsupported" // terminal: image turn, no vision capability left
	stateExhausted     chainState = "Exhausted"   // terminal: all attempts failed
)

// Chain triggers.
type chainTrigger stateless.Trigger

var (
	triggerAttempt        chainTrigger = "Attempt"
	triggerReplyReceived  chainTrigger = "ReplyReceived"
	triggerVisionFallback chainTrigger = "VisionFallback"
	triggerTextRetry      chainTrigger = "TextRetry"
	triggerVisionGone     chainTrigger = "VisionExhausted"
	triggerGiveUp         chainTrigger = "GiveUp"
)

// OutcomeKind tags the result of a fallback chain run.
type OutcomeKind int

const (
	// Success carries a genuine provider reply.
	Success OutcomeKind = iota
	// RetryableFailure means every usable attempt failed; the caller should
	// answer with a degraded reply.
	RetryableFailure
	// UnsupportedModality means the turn needed vision and no remaining
	// provider could supply it. A designed degraded success, not an error.
	UnsupportedModality
)

// Outcome is the tagged result of one chain run.
type Outcome struct {
	Kind          OutcomeKind
	Text          string
	Reason        error
	SecondaryUsed bool
}

// Tier is one provider in the chain.
type Tier struct {
	Client  llm.Client
	Model   string
	Timeout time.Duration
}

// Gateway runs the fixed two-tier chain: a primary multimodal-capable
// provider and an optional vision-capable secondary. A nil tier is simply
// skipped.
type Gateway struct {
	primary   *Tier
	secondary *Tier
}

// Reduced persona used when re-attempting an image turn against the
// secondary provider.
const visionFallbackPrompt = "You are a helpful AI assistant with vision capabilities. " +
	"Describe what you see in images and answer questions about them."

// Completion options used for every attempt.
const (
	maxTokens   = 1000
	temperature = 0.7
	topP        = 1.0
)

func New(primary, secondary *Tier) *Gateway {
	return &Gateway{primary: primary, secondary: secondary}
}

// Complete attempts to obtain a reply for the transcript. hadImage marks
// whether the current turn carries an image part; it selects the branch
// taken when the primary attempt fails.
func (g *Gateway) Complete(ctx context.Context, transcript []openai.ChatCompletionMessage, hadImage bool) Outcome {
	type chainContext struct {
		text          string
		secondaryUsed bool
		lastErr       error
	}
	res := &chainContext{}

	fsm := stateless.NewStateMachine(stateTryPrimary)

	fsm.Configure(stateTryPrimary).
		PermitReentry(triggerAttempt).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if g.primary == nil {
				res.lastErr = errors.New("no primary provider configured")
				return fsm.FireCtx(ctx, triggerGiveUp)
			}
			text, err := g.attempt(ctx, g.primary, transcript)
			if err == nil {
				res.text = text
				return fsm.FireCtx(ctx, triggerReplyReceived)
			}
			res.lastErr = err
			logger.L.Warn("primary provider attempt failed", "model", g.primary.Model, "hadImage", hadImage, "error", err)
			switch {
			case hadImage && g.secondary != nil:
				return fsm.FireCtx(ctx, triggerVisionFallback)
			case hadImage:
				return fsm.FireCtx(ctx, triggerVisionGone)
			default:
				return fsm.FireCtx(ctx, triggerTextRetry)
			}
		}).
		Permit(triggerReplyReceived, stateResolved).
		Permit(triggerVisionFallback, stateTrySecondary).
		Permit(triggerVisionGone, stateUnsupported).
		Permit(triggerTextRetry, stateRetryTextOnly).
		Permit(triggerGiveUp, stateExhausted)

	// Re-attempt the current image turn against the vision-capable
	// secondary with a reduced system prompt and only the current user
	// content; prior history stays behind.
	fsm.Configure(stateTrySecondary).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if len(transcript) == 0 {
				res.lastErr = errors.New("empty transcript for vision fallback")
				return fsm.FireCtx(ctx, triggerVisionGone)
			}
			reduced := []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: visionFallbackPrompt},
				transcript[len(transcript)-1],
			}
			text, err := g.attempt(ctx, g.secondary, reduced)
			if err == nil {
				logger.L.Info("secondary vision provider answered", "model", g.secondary.Model)
				res.text = text
				res.secondaryUsed = true
				return fsm.FireCtx(ctx, triggerReplyReceived)
			}
			res.lastErr = err
			logger.L.Warn("secondary provider attempt failed", "model", g.secondary.Model, "error", err)
			return fsm.FireCtx(ctx, triggerVisionGone)
		}).
		Permit(triggerReplyReceived, stateResolved).
		Permit(triggerVisionGone, stateUnsupported)

	// Some models reject mixed-modality history once the current turn is
	// text-only, so retry the primary with prior image parts flattened to
	// their text portions.
	fsm.Configure(stateRetryTextOnly).
		OnEntry(func(ctx context.Context, _ ...any) error {
			flattened := make([]openai.ChatCompletionMessage, len(transcript))
			for i, msg := range transcript {
				flattened[i] = compose.TextOnly(msg)
			}
			text, err := g.attempt(ctx, g.primary, flattened)
			if err == nil {
				res.text = text
				return fsm.FireCtx(ctx, triggerReplyReceived)
			}
			res.lastErr = err
			logger.L.Warn("text-only retry failed", "model", g.primary.Model, "error", err)
			return fsm.FireCtx(ctx, triggerGiveUp)
		}).
		Permit(triggerReplyReceived, stateResolved).
		Permit(triggerGiveUp, stateExhausted)

	if err := fsm.FireCtx(ctx, triggerAttempt); err != nil {
		logger.L.Error("fallback chain fire error", "error", err)
		res.lastErr = err
	}

	state, err := fsm.State(ctx)
	if err != nil {
		logger.L.Error("fallback chain state error", "error", err)
		return Outcome{Kind: RetryableFailure, Reason: err}
	}
	switch state {
	case stateResolved:
		return Outcome{Kind: Success, Text: res.text, SecondaryUsed: res.secondaryUsed}
	case stateUnsupported:
		return Outcome{Kind: UnsupportedModality, Reason: res.lastErr}
	default:
		return Outcome{Kind: RetryableFailure, Reason: res.lastErr}
	}
}

// attempt performs a single bounded completion call against one tier.
// Transport errors, timeouts and empty responses are returned for the chain
// to classify; they never abort the request.
func (g *Gateway) attempt(ctx context.Context, tier *Tier, msgs []openai.ChatCompletionMessage) (string, error) {
	callCtx := ctx
	if tier.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, tier.Timeout)
		defer cancel()
	}
	resp, err := tier.Client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       tier.Model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
