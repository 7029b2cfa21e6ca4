package repository

import (
	"context"
	"sync"

	"zeno-access/internal/audit/domain"
)

// MemoryRepository keeps the most recent audit logs in process memory, dropping the oldest
// entry once capacity is reached.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	entries  []domain.AuditLog
}

// NewMemoryRepository returns a repository holding at most capacity entries (minimum 1).
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryRepository{capacity: capacity}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			a := r.entries[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListByOrg(ctx context.Context, orgID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.AuditLog
	skipped := int32(0)
	for i := len(r.entries) - 1; i >= 0 && int32(len(out)) < limit; i-- {
		if r.entries[i].OrgID != orgID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		a := r.entries[i]
		out = append(out, &a)
	}
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == r.capacity {
		r.entries = append(r.entries[:0], r.entries[1:]...)
	}
	r.entries = append(r.entries, *a)
	return nil
}
