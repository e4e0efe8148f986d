package compose

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestUserMessage_TextOnly(t *testing.T) {
	msg := UserMessage("  hello there  ", "")
	require.Equal(t, openai.ChatMessageRoleUser, msg.Role)
	require.Equal(t, "hello there", msg.Content)
	require.Empty(t, msg.MultiContent)
}

func TestUserMessage_ImageWithText(t *testing.T) {
	msg := UserMessage("what is this?", "aGVsbG8=")
	require.Empty(t, msg.Content)
	require.Len(t, msg.MultiContent, 2)
	require.Equal(t, openai.ChatMessagePartTypeText, msg.MultiContent[0].Type)
	require.Equal(t, "what is this?", msg.MultiContent[0].Text)
	require.Equal(t, openai.ChatMessagePartTypeImageURL, msg.MultiContent[1].Type)
	require.Equal(t, "data:image/png;base64,aGVsbG8=", msg.MultiContent[1].ImageURL.URL)
}

func TestUserMessage_ImageOnly(t *testing.T) {
	msg := UserMessage("", "aGVsbG8=")
	require.Len(t, msg.MultiContent, 1)
	require.Equal(t, openai.ChatMessagePartTypeImageURL, msg.MultiContent[0].Type)
}

func TestHasImage(t *testing.T) {
	require.True(t, HasImage(UserMessage("hi", "aGVsbG8=")))
	require.False(t, HasImage(UserMessage("hi", "")))
}

func TestTextOnly_PlainMessagePassedThrough(t *testing.T) {
	in := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "sure"}
	require.Equal(t, in, TextOnly(in))
}

func TestTextOnly_FlattensParts(t *testing.T) {
	out := TextOnly(UserMessage("look at this", "aGVsbG8="))
	require.Equal(t, openai.ChatMessageRoleUser, out.Role)
	require.Equal(t, "look at this", out.Content)
	require.Empty(t, out.MultiContent)
}

func TestTextOnly_ImageOnlyBecomesPlaceholder(t *testing.T) {
	out := TextOnly(UserMessage("", "aGVsbG8="))
	require.Equal(t, "User sent an image", out.Content)
}
