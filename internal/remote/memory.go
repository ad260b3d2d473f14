package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// MemoryStore keeps documents in process. It is used in offline development
// mode and in tests, where SetFailing simulates an unreachable service.
type MemoryStore struct {
	mu      sync.Mutex
	docs    map[string][]byte
	failing bool
}

// NewMemoryStore returns a store seeded with the given projects.
func NewMemoryStore(seed ...project.Project) *MemoryStore {
	m := &MemoryStore{docs: make(map[string][]byte)}
	for _, p := range seed {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		m.docs[p.ID] = data
	}
	return m
}

// SetFailing makes every subsequent call fail with ErrRemoteUnavailable.
func (m *MemoryStore) SetFailing(failing bool) {
	m.mu.Lock()
	m.failing = failing
	m.mu.Unlock()
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemoryStore) GetAll(ctx context.Context) ([]project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	raw := make(map[string]string, len(m.docs))
	for id, data := range m.docs {
		raw[id] = string(data)
	}
	return decodeAll(raw, nil), nil
}

func (m *MemoryStore) Put(ctx context.Context, id string, proj project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", id, err)
	}
	m.docs[id] = data
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", project.ErrRemoteUnavailable, err)
	}
	if m.failing {
		return fmt.Errorf("%w: simulated outage", project.ErrRemoteUnavailable)
	}
	return nil
}
