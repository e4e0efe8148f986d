package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/a6arsh/Chatbot-yellow/internal/compose"
	"github.com/a6arsh/Chatbot-yellow/internal/session"
)

type stubResult struct {
	text string
	err  error
}

// stubClient replays canned results and records every request it saw.
type stubClient struct {
	requests []openai.ChatCompletionRequest
	results  []stubResult
}

func (c *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if len(c.results) == 0 {
		panic("stubClient: no more results configured")
	}
	r := c.results[0]
	c.results = c.results[1:]
	if r.err != nil {
		return openai.ChatCompletionResponse{}, r.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: r.text},
		}},
	}, nil
}

func tier(c *stubClient, model string) *Tier {
	return &Tier{Client: c, Model: model, Timeout: time.Second}
}

func textTranscript(turns ...string) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: session.SystemPrompt}}
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: t})
	}
	return msgs
}

func TestComplete_PrimarySucceeds(t *testing.T) {
	primary := &stubClient{results: []stubResult{{text: "  hi there  "}}}
	g := New(tier(primary, "llama"), nil)

	out := g.Complete(context.Background(), textTranscript("hello"), false)
	require.Equal(t, Success, out.Kind)
	require.Equal(t, "hi there", out.Text)
	require.False(t, out.SecondaryUsed)

	require.Len(t, primary.requests, 1)
	require.Equal(t, "llama", primary.requests[0].Model)
	require.Equal(t, 1000, primary.requests[0].MaxTokens)
}

func TestComplete_NoPrimaryConfigured(t *testing.T) {
	g := New(nil, nil)
	out := g.Complete(context.Background(), textTranscript("hello"), false)
	require.Equal(t, RetryableFailure, out.Kind)
	require.Error(t, out.Reason)
}

func TestComplete_TextOnlyRetryAfterPrimaryFailure(t *testing.T) {
	primary := &stubClient{results: []stubResult{
		{err: errors.New("mixed modality rejected")},
		{text: "recovered"},
	}}
	g := New(tier(primary, "llama"), nil)

	transcript := textTranscript()
	transcript = append(transcript, compose.UserMessage("", "aGVsbG8="))
	transcript = append(transcript, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "seen it"})
	transcript = append(transcript, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "now text only"})

	out := g.Complete(context.Background(), transcript, false)
	require.Equal(t, Success, out.Kind)
	require.Equal(t, "recovered", out.Text)

	// Retry went out with the prior image message flattened to text.
	require.Len(t, primary.requests, 2)
	retry := primary.requests[1].Messages
	require.Equal(t, "User sent an image", retry[1].Content)
	require.Empty(t, retry[1].MultiContent)
}

func TestComplete_BothTextAttemptsFail(t *testing.T) {
	primary := &stubClient{results: []stubResult{
		{err: errors.New("boom")},
		{err: errors.New("boom again")},
	}}
	g := New(tier(primary, "llama"), nil)

	out := g.Complete(context.Background(), textTranscript("hello"), false)
	require.Equal(t, RetryableFailure, out.Kind)
	require.Error(t, out.Reason)
	require.Len(t, primary.requests, 2)
}

func TestComplete_ImageFallsBackToSecondary(t *testing.T) {
	primary := &stubClient{results: []stubResult{{err: errors.New("vision error")}}}
	secondary := &stubClient{results: []stubResult{{text: "I see a cat"}}}
	g := New(tier(primary, "llama"), tier(secondary, "gpt-4o-mini"))

	transcript := textTranscript("earlier turn")
	userMsg := compose.UserMessage("what is this?", "aGVsbG8=")
	transcript = append(transcript, userMsg)

	out := g.Complete(context.Background(), transcript, true)
	require.Equal(t, Success, out.Kind)
	require.Equal(t, "I see a cat", out.Text)
	require.True(t, out.SecondaryUsed)

	// Secondary gets the reduced system prompt and only the current turn.
	require.Len(t, secondary.requests, 1)
	reduced := secondary.requests[0].Messages
	require.Len(t, reduced, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, reduced[0].Role)
	require.NotEqual(t, session.SystemPrompt, reduced[0].Content)
	require.Equal(t, userMsg, reduced[1])
}

func TestComplete_ImageWithoutSecondaryIsUnsupported(t *testing.T) {
	primary := &stubClient{results: []stubResult{{err: errors.New("vision error")}}}
	g := New(tier(primary, "llama"), nil)

	transcript := textTranscript()
	transcript = append(transcript, compose.UserMessage("", "aGVsbG8="))

	out := g.Complete(context.Background(), transcript, true)
	require.Equal(t, UnsupportedModality, out.Kind)
	require.Error(t, out.Reason)
	require.Len(t, primary.requests, 1)
}

// A degenerate empty transcript must not panic when the chain reaches the
// secondary tier; it resolves as an unsupported-modality outcome.
func TestComplete_EmptyTranscriptWithImageDoesNotPanic(t *testing.T) {
	primary := &stubClient{results: []stubResult{{err: errors.New("vision error")}}}
	secondary := &stubClient{results: nil}
	g := New(tier(primary, "llama"), tier(secondary, "gpt-4o-mini"))

	out := g.Complete(context.Background(), nil, true)
	require.Equal(t, UnsupportedModality, out.Kind)
	require.Error(t, out.Reason)
	require.Empty(t, secondary.requests)
}

func TestComplete_ImageSecondaryAlsoFails(t *testing.T) {
	primary := &stubClient{results: []stubResult{{err: errors.New("vision error")}}}
	secondary := &stubClient{results: []stubResult{{err: errors.New("also down")}}}
	g := New(tier(primary, "llama"), tier(secondary, "gpt-4o-mini"))

	transcript := textTranscript()
	transcript = append(transcript, compose.UserMessage("hm", "aGVsbG8="))

	out := g.Complete(context.Background(), transcript, true)
	require.Equal(t, UnsupportedModality, out.Kind)
}

// A response with no choices is classified like any other provider failure.
func TestComplete_EmptyChoicesIsAFailure(t *testing.T) {
	primary := &emptyClient{}
	g := New(&Tier{Client: primary, Model: "llama", Timeout: time.Second}, nil)

	out := g.Complete(context.Background(), textTranscript("hello"), false)
	require.Equal(t, RetryableFailure, out.Kind)
	require.Equal(t, 2, primary.calls)
}

type emptyClient struct{ calls int }

func (c *emptyClient) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.calls++
	return openai.ChatCompletionResponse{}, nil
}
