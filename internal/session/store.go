package session

import (
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
)

// SystemPrompt is the persona seeded as the first message of every
// transcript. It is never trimmed.
const SystemPrompt = "You are a helpful, friendly AI assistant with vision capabilities. " +
	"You can see and analyze images, discuss any topic, tell jokes, share facts, help with coding, " +
	"answer questions, play games, or just have a casual conversation. When users send images, " +
	"describe what you see and engage with the visual content meaningfully. You are knowledgeable, " +
	"engaging, and always ready to help users with their questions and tasks."

// Transcript trim bounds: one system message plus the most recent
// conversation messages, to keep provider context bounded.
const (
	DefaultKeepSystem = 1
	DefaultKeepRecent = 20
)

// Session is one keyed conversation transcript plus metadata. The embedded
// mutex serializes append/trim/snapshot per session id; requests for
// different ids never contend.
type Session struct {
	mu        sync.Mutex
	UserID    string
	CreatedAt time.Time
	messages  []openai.ChatCompletionMessage
}

// Store is the in-memory session map. All mutations are process-lifetime
// only; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it seeded with the system
// message when unseen. The user tag is recorded on creation only.
func (s *Store) GetOrCreate(id, userID string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = &Session{
		UserID:    userID,
		CreatedAt: time.Now(),
		messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: SystemPrompt,
		}},
	}
	s.sessions[id] = sess
	return sess
}

// Append adds msg to the end of the transcript for id, creating the session
// first if absent. A multimodal message is a single transcript entry, so the
// append is atomic under the session lock.
func (s *Store) Append(id string, msg openai.ChatCompletionMessage) {
	sess := s.GetOrCreate(id, "anonymous")
	sess.mu.Lock()
	sess.messages = append(sess.messages, msg)
	sess.mu.Unlock()
}

// Snapshot returns a copy of the transcript for id, or nil when the session
// does not exist. Callers use the copy for provider calls so the session
// lock is never held across network I/O.
func (s *Store) Snapshot(id string) []openai.ChatCompletionMessage {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]openai.ChatCompletionMessage, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Trim truncates the transcript for id to the first keepSystem messages plus
// the last keepRecent, preserving order. Idempotent when already within
// bound; no-op for unknown ids.
func (s *Store) Trim(id string, keepSystem, keepRecent int) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.messages) <= keepSystem+keepRecent {
		return
	}
	trimmed := make([]openai.ChatCompletionMessage, 0, keepSystem+keepRecent)
	trimmed = append(trimmed, sess.messages[:keepSystem]...)
	trimmed = append(trimmed, sess.messages[len(sess.messages)-keepRecent:]...)
	sess.messages = trimmed
}

// Clear removes the session entirely. Idempotent.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// List returns a snapshot of current session ids, for diagnostics.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Has reports whether a session exists for id.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}
