package engine

import (
	"context"
	"errors"
	"testing"

	"zeno-access/internal/platform/rbac"
	"zeno-access/internal/policy/domain"
	"zeno-access/internal/policy/repository"
	roledomain "zeno-access/internal/role/domain"
)

// mockPolicyRepo implements repository.Repository for tests.
type mockPolicyRepo struct {
	policies map[int64][]*domain.Policy
	err      error
}

var _ repository.Repository = (*mockPolicyRepo)(nil)

func (m *mockPolicyRepo) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	return nil, nil
}

func (m *mockPolicyRepo) ListByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	return m.policies[orgID], nil
}

func (m *mockPolicyRepo) GetEnabledPoliciesByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.policies[orgID], nil
}

func (m *mockPolicyRepo) Create(ctx context.Context, p *domain.Policy) error { return nil }

func (m *mockPolicyRepo) Update(ctx context.Context, p *domain.Policy) error { return nil }

func (m *mockPolicyRepo) Delete(ctx context.Context, id string) error { return nil }

const managersCannotEdit = `package zeno.business_access

deny if {
	input.business_role == "manager"
	input.action == "edit-business"
}
`

const staffMayEdit = `package zeno.business_access

allow if {
	input.business_role == "staff"
	input.action == "edit-business"
}
`

const allowEverything = `package zeno.business_access

allow if { true }
`

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	if err := NewOPAEvaluator(nil).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_DefaultPolicyMatchesStatic(t *testing.T) {
	ctx := context.Background()
	opa := NewOPAEvaluator(&mockPolicyRepo{})
	orgRoles := []roledomain.OrgRole{roledomain.OrgRoleOwner, roledomain.OrgRoleManager, roledomain.OrgRoleStaff, ""}
	bizRoles := []roledomain.BusinessRole{
		roledomain.BusinessRoleOwner, roledomain.BusinessRoleManager, roledomain.BusinessRoleStaff, roledomain.BusinessRoleNone,
	}
	actions := append(append([]rbac.Action{}, rbac.Actions...), rbac.Action("archive-business"))

	for _, or := range orgRoles {
		for _, br := range bizRoles {
			for _, a := range actions {
				in := Input{OrgID: 1, OrgRole: or, BusinessRole: br, Action: a}
				got, err := opa.EvaluateBusinessAction(ctx, in)
				if err != nil {
					t.Fatalf("EvaluateBusinessAction(%+v): %v", in, err)
				}
				want, _ := StaticEvaluator{}.EvaluateBusinessAction(ctx, in)
				if got != want {
					t.Errorf("org=%q biz=%q action=%q: opa = %v, static = %v", or, br, a, got, want)
				}
			}
		}
	}
}

func TestOPAEvaluator_OrgPolicies(t *testing.T) {
	ctx := context.Background()
	repo := &mockPolicyRepo{policies: map[int64][]*domain.Policy{
		1: {{ID: "p1", OrgID: 1, Rules: managersCannotEdit, Enabled: true}},
		2: {{ID: "p2", OrgID: 2, Rules: staffMayEdit, Enabled: true}},
		3: {{ID: "p3", OrgID: 3, Rules: allowEverything, Enabled: true}},
		4: {{ID: "p4", OrgID: 4, Rules: staffMayEdit, Enabled: false}},
	}}
	e := NewOPAEvaluator(repo)

	testCases := []struct {
		name string
		in   Input
		want bool
	}{
		{"deny rule blocks manager", Input{OrgID: 1, OrgRole: roledomain.OrgRoleManager, BusinessRole: roledomain.BusinessRoleManager, Action: rbac.ActionEditBusiness}, false},
		{"deny rule leaves business owner", Input{OrgID: 1, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleOwner, Action: rbac.ActionEditBusiness}, true},
		{"deny rule cannot block org owner", Input{OrgID: 1, OrgRole: roledomain.OrgRoleOwner, BusinessRole: roledomain.BusinessRoleManager, Action: rbac.ActionEditBusiness}, true},
		{"deny rule scoped to its org", Input{OrgID: 9, OrgRole: roledomain.OrgRoleManager, BusinessRole: roledomain.BusinessRoleManager, Action: rbac.ActionEditBusiness}, true},
		{"allow rule widens staff", Input{OrgID: 2, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleStaff, Action: rbac.ActionEditBusiness}, true},
		{"allow rule does not widen delete", Input{OrgID: 2, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleStaff, Action: rbac.ActionDeleteBusiness}, false},
		{"unknown action stays denied", Input{OrgID: 3, OrgRole: roledomain.OrgRoleOwner, BusinessRole: roledomain.BusinessRoleOwner, Action: "archive-business"}, false},
		{"disabled policy ignored", Input{OrgID: 4, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleStaff, Action: rbac.ActionEditBusiness}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.EvaluateBusinessAction(ctx, tc.in)
			if err != nil {
				t.Fatalf("EvaluateBusinessAction: %v", err)
			}
			if got != tc.want {
				t.Errorf("allowed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOPAEvaluator_FallsBackToBuiltInRule(t *testing.T) {
	ctx := context.Background()
	broken := &mockPolicyRepo{policies: map[int64][]*domain.Policy{
		1: {{ID: "bad", OrgID: 1, Rules: "package zeno.business_access\n\ndefault allow := true\n", Enabled: true}},
	}}
	failing := &mockPolicyRepo{err: errors.New("database error")}

	for name, repo := range map[string]*mockPolicyRepo{"compile error": broken, "repo error": failing} {
		t.Run(name, func(t *testing.T) {
			e := NewOPAEvaluator(repo)
			staff := Input{OrgID: 1, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleStaff, Action: rbac.ActionEditBusiness}
			if got, err := e.EvaluateBusinessAction(ctx, staff); err != nil || got {
				t.Errorf("staff edit = %v, %v; want false, nil", got, err)
			}
			manager := staff
			manager.BusinessRole = roledomain.BusinessRoleManager
			if got, err := e.EvaluateBusinessAction(ctx, manager); err != nil || !got {
				t.Errorf("manager edit = %v, %v; want true, nil", got, err)
			}
		})
	}
}

func TestOPAEvaluator_ReusesCompiledPolicySet(t *testing.T) {
	ctx := context.Background()
	repo := &mockPolicyRepo{policies: map[int64][]*domain.Policy{
		1: {{ID: "p1", OrgID: 1, Rules: managersCannotEdit, Enabled: true}},
	}}
	e := NewOPAEvaluator(repo)
	manager := Input{OrgID: 1, OrgRole: roledomain.OrgRoleManager, BusinessRole: roledomain.BusinessRoleManager}

	for _, action := range rbac.Actions {
		in := manager
		in.Action = action
		if _, err := e.EvaluateBusinessAction(ctx, in); err != nil {
			t.Fatalf("EvaluateBusinessAction(%s): %v", action, err)
		}
	}
	if n := len(e.prepared); n != 1 {
		t.Errorf("prepared queries = %d, want 1 for one policy set", n)
	}

	in := manager
	in.Action = rbac.ActionEditBusiness
	if got, _ := e.EvaluateBusinessAction(ctx, in); got {
		t.Error("manager edit should be denied by org policy")
	}
	repo.policies[1] = []*domain.Policy{{ID: "p1", OrgID: 1, Rules: staffMayEdit, Enabled: true}}
	if got, _ := e.EvaluateBusinessAction(ctx, in); !got {
		t.Error("edited policy not picked up")
	}
	if n := len(e.prepared); n != 2 {
		t.Errorf("prepared queries = %d, want 2 after policy edit", n)
	}

	in.OrgID = 0
	if _, err := e.EvaluateBusinessAction(ctx, in); err != nil {
		t.Fatalf("EvaluateBusinessAction: %v", err)
	}
	if n := len(e.prepared); n != 3 {
		t.Errorf("prepared queries = %d, want 3 with default-only set", n)
	}
}

func TestOPAEvaluator_CachesCompileErrors(t *testing.T) {
	broken := &mockPolicyRepo{policies: map[int64][]*domain.Policy{
		1: {{ID: "bad", OrgID: 1, Rules: "package zeno.business_access\n\ndefault allow := true\n", Enabled: true}},
	}}
	e := NewOPAEvaluator(broken)
	in := Input{OrgID: 1, OrgRole: roledomain.OrgRoleStaff, BusinessRole: roledomain.BusinessRoleManager, Action: rbac.ActionEditBusiness}
	for i := 0; i < 3; i++ {
		if got, err := e.EvaluateBusinessAction(context.Background(), in); err != nil || !got {
			t.Fatalf("manager edit = %v, %v; want built-in allow", got, err)
		}
	}
	if n := len(e.prepared); n != 1 {
		t.Fatalf("prepared queries = %d, want 1", n)
	}
	for _, entry := range e.prepared {
		if entry.err == nil {
			t.Error("compile error not cached")
		}
	}
}

func TestPolicySetKey(t *testing.T) {
	if policySetKey([]string{"ab", "c"}) == policySetKey([]string{"a", "bc"}) {
		t.Error("module boundaries must change the key")
	}
	if policySetKey([]string{"a", "b"}) == policySetKey([]string{"b", "a"}) {
		t.Error("module order must change the key")
	}
	if policySetKey([]string{"a"}) != policySetKey([]string{"a"}) {
		t.Error("key must be deterministic")
	}
}

func TestValidateRules(t *testing.T) {
	testCases := []struct {
		name    string
		rules   string
		wantErr bool
	}{
		{"deny rule", managersCannotEdit, false},
		{"allow rule", staffMayEdit, false},
		{"syntax error", "package zeno.business_access\n\nallow if {", true},
		{"wrong package", "package other\n\nallow if { true }\n", true},
		{"conflicting default", "package zeno.business_access\n\ndefault allow := true\n", true},
		{"empty", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRules(tc.rules)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateRules err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStaticEvaluator(t *testing.T) {
	ctx := context.Background()
	got, err := StaticEvaluator{}.EvaluateBusinessAction(ctx, Input{OrgRole: roledomain.OrgRoleOwner, Action: rbac.ActionDeleteBusiness})
	if err != nil || !got {
		t.Errorf("org owner delete = %v, %v", got, err)
	}
	got, _ = StaticEvaluator{}.EvaluateBusinessAction(ctx, Input{OrgRole: roledomain.OrgRoleManager, BusinessRole: roledomain.BusinessRoleManager, Action: rbac.ActionDeleteBusiness})
	if got {
		t.Error("business manager should not delete")
	}
}
