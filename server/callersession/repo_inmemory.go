package callersession

import (
	"errors"
	"fmt"
	"sync"

	"github.com/erpbridge/go-ws-proxy/proxy"
)

var ErrSessionNotFound = errors.New("caller session not found")

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*proxy.SessionContext
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory caller session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*proxy.SessionContext),
	}
}

func (r *InMemoryRepo) Upsert(sessionID string, sctx *proxy.SessionContext) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy so callers cannot mutate stored state between requests
	stored := *sctx
	r.sessions[sessionID] = &stored
	return nil
}

func (r *InMemoryRepo) Get(sessionID string) (*proxy.SessionContext, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sctx, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *sctx
	return &copied, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
