package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
)

// Session is a conversation whose history is resent with every message.
type Session struct {
	ID string

	client *Client
	system string

	mu      sync.Mutex
	history []Message
}

// NewSession starts an empty conversation. system may be empty.
func NewSession(client *Client, system string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		client: client,
		system: system,
	}
}

// Send appends msg to the history and returns the reply. A failed
// exchange leaves the history unchanged.
func (s *Session) Send(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "", fmt.Errorf("llm: empty message: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, 0, len(s.history)+2)
	if s.system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: s.system})
	}
	messages = append(messages, s.history...)
	messages = append(messages, Message{Role: RoleUser, Content: msg})

	reply, err := s.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	s.history = append(s.history,
		Message{Role: RoleUser, Content: msg},
		Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// History returns a copy of the exchanged messages, oldest first.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

// Reset forgets the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Sessions keeps the most recently used conversations of a server.
type Sessions struct {
	client *Client
	system string
	cache  *lru.Cache[string, *Session]
}

// NewSessions keeps up to size sessions; the least recently used one is
// dropped when a new session would exceed it.
func NewSessions(client *Client, system string, size int) (*Sessions, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, err
	}
	return &Sessions{client: client, system: system, cache: cache}, nil
}

// Get returns the session for id, or a new session when id is empty or
// unknown.
func (s *Sessions) Get(id string) *Session {
	if id != "" {
		if sess, ok := s.cache.Get(id); ok {
			return sess
		}
	}
	sess := NewSession(s.client, s.system)
	s.cache.Add(sess.ID, sess)
	return sess
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
