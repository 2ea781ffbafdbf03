package agent

import (
	"context"
	"fmt"
)

// SessionReadWriter loads and saves the session addressed by the context.
type SessionReadWriter interface {
	InitState(ctx context.Context) *Session
	Read(ctx context.Context) (*Session, error)
	Write(ctx context.Context, session *Session) error
	Remove(ctx context.Context) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey routes session and transcript storage to key.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

func StateKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(stateKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func stateKeyOrDefault(ctx context.Context) (string, bool) {
	key, ok := StateKeyFromContext(ctx)
	if ok && key != "" {
		return key, true
	}
	return defaultStateKey, true
}

// SessionStore keeps sessions in any Cache backend. A missing entry reads
// as a fresh session in the greeting state.
type SessionStore struct {
	store Store[*Session]
}

func NewSessionStore(core Cache[*Session]) *SessionStore {
	return &SessionStore{
		store: NewStore(core, "talentscout:session", stateKeyOrDefault),
	}
}

func NewMemorySessionStore() *SessionStore {
	return NewSessionStore(NewMemoryCache[*Session]())
}

func (s *SessionStore) InitState(ctx context.Context) *Session {
	return NewSession()
}

func (s *SessionStore) Read(ctx context.Context) (*Session, error) {
	session, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok || session == nil {
		return s.InitState(ctx), nil
	}
	// Callers mutate the returned session, so hand out a copy.
	return session.Clone(), nil
}

func (s *SessionStore) Write(ctx context.Context, session *Session) error {
	if session == nil {
		return fmt.Errorf("write session: nil session")
	}
	if err := s.store.Set(ctx, session.Clone()); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context) error {
	return s.store.Del(ctx)
}

var _ SessionReadWriter = (*SessionStore)(nil)
