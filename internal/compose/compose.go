// Package compose builds provider-ready user messages from raw request
// input. Pure transformation; validation happens before this layer.
package compose

import (
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Uploaded images are always labeled PNG regardless of actual encoding; the
// paired front-end depends on this label.
const imageDataPrefix = "data:image/png;base64,"

// UserMessage builds the user message for one turn. Text-only input becomes
// plain string content; when an image is present the content is a part list
// with an optional text part followed by the image part.
func UserMessage(text, imageBase64 string) openai.ChatCompletionMessage {
	text = strings.TrimSpace(text)
	if imageBase64 == "" {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		}
	}

	parts := make([]openai.ChatMessagePart, 0, 2)
	if text != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: text,
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: imageDataPrefix + imageBase64,
		},
	})
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

// HasImage reports whether msg carries an image part.
func HasImage(msg openai.ChatCompletionMessage) bool {
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeImageURL {
			return true
		}
	}
	return false
}

// TextOnly flattens a possibly multimodal message to its text portion.
// Messages that carried only an image become a placeholder note so the
// conversation still reads coherently to a text-only model.
func TextOnly(msg openai.ChatCompletionMessage) openai.ChatCompletionMessage {
	if len(msg.MultiContent) == 0 {
		return msg
	}
	texts := make([]string, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	content := strings.Join(texts, " ")
	if content == "" {
		content = "User sent an image"
	}
	return openai.ChatCompletionMessage{Role: msg.Role, Content: content}
}
