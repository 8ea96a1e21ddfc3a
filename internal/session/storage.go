package session

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// Storage is the persisted key/value state of one browser. Every call is
// scoped by ctx: server-side implementations resolve the browser from the
// request context.
type Storage interface {
	Get(ctx context.Context, key string) string
	Put(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
	// Scope identifies the browser's storage across requests; change
	// notifications are keyed by it.
	Scope(ctx context.Context) string
}

// Renewer is implemented by storages that can rotate their identifier on
// privilege changes.
type Renewer interface {
	Renew(ctx context.Context) error
}

const keyScope = "scope"

// SCSStorage keeps the state in the server-side session loaded by
// scs.SessionManager.LoadAndSave.
type SCSStorage struct {
	sm *scs.SessionManager
}

func NewSCSStorage(sm *scs.SessionManager) *SCSStorage {
	return &SCSStorage{sm: sm}
}

func (s *SCSStorage) Get(ctx context.Context, key string) string {
	return s.sm.GetString(ctx, key)
}

func (s *SCSStorage) Put(ctx context.Context, key, value string) {
	s.sm.Put(ctx, key, value)
}

func (s *SCSStorage) Remove(ctx context.Context, key string) {
	s.sm.Remove(ctx, key)
}

// Scope returns a random id stored inside the session data, so it survives
// session token renewal.
func (s *SCSStorage) Scope(ctx context.Context) string {
	if id := s.sm.GetString(ctx, keyScope); id != "" {
		return id
	}
	id := uuid.NewString()
	s.sm.Put(ctx, keyScope, id)
	return id
}

func (s *SCSStorage) Renew(ctx context.Context) error {
	return s.sm.RenewToken(ctx)
}

// MemoryStorage is a process-local Storage with a single scope. It backs the
// CLI and tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	scope string
	data  map[string]string
}

func NewMemoryStorage(scope string) *MemoryStorage {
	return &MemoryStorage{scope: scope, data: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

func (s *MemoryStorage) Put(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStorage) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *MemoryStorage) Scope(context.Context) string { return s.scope }

// Len reports how many keys are stored.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
