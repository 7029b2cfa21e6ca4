package repository

import (
	"context"
	"sort"
	"sync"

	"zeno-access/internal/policy/domain"
)

// MemoryRepository keeps policies in process memory. Used when no DATABASE_URL is set.
type MemoryRepository struct {
	mu       sync.RWMutex
	policies map[string]domain.Policy
}

// NewMemoryRepository returns an empty in-memory policy repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{policies: make(map[string]domain.Policy)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepository) ListByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	return r.filter(orgID, false), nil
}

func (r *MemoryRepository) GetEnabledPoliciesByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	return r.filter(orgID, true), nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *domain.Policy) error {
	r.mu.Lock()
	r.policies[p.ID] = *p
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *domain.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.policies[p.ID]
	if !ok {
		return nil
	}
	existing.Rules = p.Rules
	existing.Enabled = p.Enabled
	r.policies[p.ID] = existing
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.policies, id)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) filter(orgID int64, enabledOnly bool) []*domain.Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Policy
	for _, p := range r.policies {
		if p.OrgID != orgID || (enabledOnly && !p.Enabled) {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
