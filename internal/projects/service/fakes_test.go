package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/projecthub/submission-backend/internal/projects/domain"
	"github.com/projecthub/submission-backend/internal/storage/blob"
)

type memProjects struct {
	mu        sync.Mutex
	items     []domain.Project
	createErr error
	listErr   error
}

func (m *memProjects) Create(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.items = append(m.items, *p)
	return nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memProjects) ListByOwner(_ context.Context, ownerID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Project{}
	for _, p := range m.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) ListByStatus(_ context.Context, status domain.Status) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Project{}
	for _, p := range m.items {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) ListRefsByStatus(_ context.Context, ownerID string, status domain.Status) ([]domain.ProjectRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.ProjectRef{}
	for _, p := range m.items {
		if p.OwnerID == ownerID && p.Status == status {
			out = append(out, domain.ProjectRef{ID: p.ID, Title: p.Title})
		}
	}
	return out, nil
}

func (m *memProjects) UpdateStatus(_ context.Context, id string, from, to domain.Status) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		if m.items[i].Status != from {
			return nil, domain.ErrAlreadyReviewed
		}
		now := time.Now()
		m.items[i].Status = to
		m.items[i].ReviewedAt = &now
		p := m.items[i]
		return &p, nil
	}
	return nil, domain.ErrNotFound
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) ProjectReviewed(_ context.Context, p *domain.Project, note string) error {
	n.calls = append(n.calls, p.ID+":"+string(p.Status)+":"+note)
	return n.err
}

type memCache struct {
	mu          sync.Mutex
	reports     map[string]*domain.StatusReport
	gens        map[string]int64
	getErr      error
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{reports: map[string]*domain.StatusReport{}, gens: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, ownerID string) (*domain.StatusReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.reports[ownerID]
	return r, ok, nil
}

func (c *memCache) Generation(_ context.Context, ownerID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[ownerID], nil
}

func (c *memCache) Set(_ context.Context, ownerID string, gen int64, report *domain.StatusReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[ownerID] != gen {
		return nil
	}
	c.reports[ownerID] = report
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ownerID)
	c.gens[ownerID]++
	delete(c.reports, ownerID)
	return nil
}

// gatedReader pauses the first approved-list read until release is closed.
type gatedReader struct {
	*memProjects
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGatedReader(repo *memProjects) *gatedReader {
	return &gatedReader{memProjects: repo, reached: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedReader) ListRefsByStatus(ctx context.Context, ownerID string, status domain.Status) ([]domain.ProjectRef, error) {
	refs, err := g.memProjects.ListRefsByStatus(ctx, ownerID, status)
	if status == domain.StatusApproved {
		g.once.Do(func() {
			close(g.reached)
			<-g.release
		})
	}
	return refs, err
}

var errBoom = errors.New("boom")
