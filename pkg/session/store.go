package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/sptree/pkg/errors"
)

// DefaultTTL is how long an idle session is kept by a [MemoryStore].
const DefaultTTL = 24 * time.Hour

// Store is the interface for session storage backends.
type Store interface {
	// Create assigns a new id to s and stores it.
	Create(ctx context.Context, s *Session) (string, error)

	// Get retrieves a session by id and extends its lifetime.
	// Returns SESSION_NOT_FOUND if the session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}

type storeEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*storeEntry
	now     func() time.Time
}

// NewMemoryStore creates a store whose sessions expire after ttl without
// access. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*storeEntry),
		now:     time.Now,
	}
}

// Create implements Store.
func (m *MemoryStore) Create(ctx context.Context, s *Session) (string, error) {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = id
	m.entries[id] = &storeEntry{session: s, expiresAt: m.now().Add(m.ttl)}
	return id, nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	now := m.now()
	if ok && now.After(e.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	if !ok {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	e.expiresAt = now.Add(m.ttl)
	return e.session, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Cleanup implements Store.
func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included until
// the next Cleanup.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ Store = (*MemoryStore)(nil)
