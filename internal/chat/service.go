// Package chat orchestrates one conversational turn: validate, compose,
// append, complete, trim. It owns no state of its own.
package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/a6arsh/Chatbot-yellow/internal/compose"
	"github.com/a6arsh/Chatbot-yellow/internal/fallback"
	"github.com/a6arsh/Chatbot-yellow/internal/gateway"
	"github.com/a6arsh/Chatbot-yellow/internal/history"
	"github.com/a6arsh/Chatbot-yellow/internal/logger"
	"github.com/a6arsh/Chatbot-yellow/internal/session"
)

// Validation errors; the HTTP layer maps these to 400. They are returned
// before any session mutation.
var (
	ErrMessageMissing = errors.New("Message is required")
	ErrEmptyTurn      = errors.New("Message or image is required")
)

// Turn statuses surfaced to the client.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
)

// Request is one incoming chat turn. Message distinguishes a missing field
// from an empty one.
type Request struct {
	Message   *string
	Image     string // base64
	SessionID string
	UserID    string
}

// Result is the outcome of one turn.
type Result struct {
	Reply     string
	Status    string
	SessionID string
}

// Service wires the session store, provider gateway and fallback responder
// for the chat endpoint.
type Service struct {
	store     *session.Store
	gw        *gateway.Gateway
	responder *fallback.Responder
	recorder  *history.Recorder
}

func NewService(store *session.Store, gw *gateway.Gateway, responder *fallback.Responder, recorder *history.Recorder) *Service {
	return &Service{store: store, gw: gw, responder: responder, recorder: recorder}
}

// Chat runs one turn. Provider failures never surface as errors: the reply
// degrades to a canned response and Status marks the fidelity level. The
// per-session lock is held only for append/trim, never across the provider
// call.
func (s *Service) Chat(ctx context.Context, req Request) (Result, error) {
	if req.Message == nil {
		return Result{}, ErrMessageMissing
	}
	text := strings.TrimSpace(*req.Message)
	if text == "" && req.Image == "" {
		return Result{}, ErrEmptyTurn
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	userMsg := compose.UserMessage(text, req.Image)
	hadImage := req.Image != ""

	s.store.GetOrCreate(sessionID, userID)
	s.store.Append(sessionID, userMsg)
	s.recorder.Record(sessionID, openai.ChatMessageRoleUser, compose.TextOnly(userMsg).Content)

	transcript := s.store.Snapshot(sessionID)
	outcome := s.gw.Complete(ctx, transcript, hadImage)

	var reply, status string
	switch outcome.Kind {
	case gateway.Success:
		reply = outcome.Text
		status = StatusSuccess
		if outcome.SecondaryUsed {
			logger.L.Debug("turn answered by secondary provider", "session", sessionID)
		}
	case gateway.UnsupportedModality:
		reply = s.responder.Guidance()
		status = StatusFallback
		logger.L.Info("image turn degraded to vision guidance", "session", sessionID, "reason", outcome.Reason)
	default:
		reply = s.responder.Respond(hadImage)
		status = StatusFallback
		logger.L.Info("turn degraded to fallback reply", "session", sessionID, "hadImage", hadImage, "reason", outcome.Reason)
	}

	s.store.Append(sessionID, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	s.recorder.Record(sessionID, openai.ChatMessageRoleAssistant, reply)
	s.store.Trim(sessionID, session.DefaultKeepSystem, session.DefaultKeepRecent)

	return Result{Reply: reply, Status: status, SessionID: sessionID}, nil
}

// Clear removes a session's transcript entirely. Always succeeds.
func (s *Service) Clear(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	s.store.Clear(sessionID)
	return sessionID
}

// Sessions returns current session ids, for diagnostics.
func (s *Service) Sessions() []string {
	return s.store.List()
}
