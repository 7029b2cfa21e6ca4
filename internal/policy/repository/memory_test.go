package repository

import (
	"context"
	"testing"
	"time"

	"zeno-access/internal/policy/domain"
)

func TestMemoryRepository_ListAndEnabled(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []*domain.Policy{
		{ID: "b", OrgID: 1, Rules: "r", Enabled: true, CreatedAt: base.Add(time.Minute)},
		{ID: "a", OrgID: 1, Rules: "r", Enabled: false, CreatedAt: base},
		{ID: "c", OrgID: 2, Rules: "r", Enabled: true, CreatedAt: base},
	} {
		if err := r.Create(ctx, p); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	all, _ := r.ListByOrg(ctx, 1)
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("ListByOrg order = %v, want [a b]", ids(all))
	}
	enabled, _ := r.GetEnabledPoliciesByOrg(ctx, 1)
	if len(enabled) != 1 || enabled[0].ID != "b" {
		t.Errorf("enabled = %v, want [b]", ids(enabled))
	}
}

func TestMemoryRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_ = r.Create(ctx, &domain.Policy{ID: "p", OrgID: 1, Rules: "old"})

	if err := r.Update(ctx, &domain.Policy{ID: "p", OrgID: 9, Rules: "new", Enabled: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := r.GetByID(ctx, "p")
	if got.Rules != "new" || !got.Enabled {
		t.Errorf("policy = %+v", got)
	}
	if got.OrgID != 1 {
		t.Errorf("org_id = %d, want 1 (update must not move a policy)", got.OrgID)
	}

	got.Rules = "mutated"
	again, _ := r.GetByID(ctx, "p")
	if again.Rules != "new" {
		t.Error("GetByID must return a copy")
	}

	if err := r.Delete(ctx, "p"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := r.GetByID(ctx, "p"); got != nil {
		t.Errorf("GetByID after delete = %+v, want nil", got)
	}
}

func ids(ps []*domain.Policy) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
