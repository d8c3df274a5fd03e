package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

// Store persists sessions. Get and Delete return ErrNotFound for unknown or
// expired ids. Implementations must hand out copies, never shared state.
type Store interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Put(ctx context.Context, s models.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Session, error)
}

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in a map. With a positive ttl a session
// expires ttl after its last Put; expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	if m.expired(e, m.now()) {
		delete(m.entries, id)
		return models.Session{}, ErrNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{session: s.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[s.ID] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// List returns live sessions oldest first and sweeps expired ones.
func (m *MemoryStore) List(_ context.Context) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]models.Session, 0, len(m.entries))
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
			continue
		}
		out = append(out, e.session.Clone())
	}
	sortSessions(out)
	return out, nil
}

func sortSessions(ss []models.Session) {
	sort.Slice(ss, func(i, j int) bool {
		if !ss[i].CreatedAt.Equal(ss[j].CreatedAt) {
			return ss[i].CreatedAt.Before(ss[j].CreatedAt)
		}
		return ss[i].ID < ss[j].ID
	})
}
