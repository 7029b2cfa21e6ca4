package engine

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"sync"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"zeno-access/internal/platform/rbac"
	"zeno-access/internal/policy/repository"
)

const (
	defaultPolicyPackage = "zeno.business_access"
	decisionQuery        = "data.zeno.business_access.decision"

	// maxPreparedQueries bounds the prepared query cache; it is cleared when full.
	maxPreparedQueries = 256
)

// Default Rego policy encoding the business-role rank rule. Org policies in the same package may
// add allow or deny rules; they cannot remove the organization-owner override and unknown actions
// are never allowed.
const defaultRegoPolicy = `package zeno.business_access

default allow := false
default deny := false
default decision := false

rank := {"owner": 3, "manager": 2, "staff": 1}

required := {
	"edit-business": "manager",
	"delete-business": "owner",
	"manage-team": "manager",
	"change-team-roles": "owner",
}

allow if {
	need := required[input.action]
	rank[input.business_role] >= rank[need]
}

decision if {
	required[input.action]
	input.org_role == "owner"
}

decision if {
	required[input.action]
	allow
	not deny
}
`

// OPAEvaluator evaluates business actions with OPA Rego, layering each org's enabled policies
// over the default module. Compiled queries are cached per distinct policy set, so an edited
// policy takes effect on the next evaluation.
type OPAEvaluator struct {
	policyRepo repository.Repository

	mu       sync.Mutex
	prepared map[string]preparedQuery
}

// preparedQuery is a cache entry: a ready query or the compile error of its policy set.
type preparedQuery struct {
	query rego.PreparedEvalQuery
	err   error
}

// NewOPAEvaluator returns an OPA-based policy evaluator. policyRepo may be nil; then only the
// default policy applies.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo, prepared: make(map[string]preparedQuery)}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and evaluate the default policy.
// Does not call the policy repo or database and bypasses the query cache. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	q, err := prepare(ctx, []string{defaultRegoPolicy})
	if err == nil {
		_, err = evaluate(ctx, q, buildInput(Input{Action: rbac.ActionEditBusiness}))
	}
	if err != nil {
		return fmt.Errorf("default policy: %w", err)
	}
	return nil
}

// EvaluateBusinessAction implements Evaluator. When org policies cannot be loaded they are
// skipped; when evaluation fails the built-in rule decides. Neither case returns an error.
func (e *OPAEvaluator) EvaluateBusinessAction(ctx context.Context, in Input) (bool, error) {
	modules := []string{defaultRegoPolicy}
	if e.policyRepo != nil && in.OrgID != 0 {
		enabled, err := e.policyRepo.GetEnabledPoliciesByOrg(ctx, in.OrgID)
		if err != nil {
			log.Printf("policy: failed to load policies for org %d: %v", in.OrgID, err)
		} else {
			for _, p := range enabled {
				if p.Enabled && p.Rules != "" {
					modules = append(modules, p.Rules)
				}
			}
		}
	}

	q, err := e.query(ctx, modules)
	var allowed bool
	if err == nil {
		allowed, err = evaluate(ctx, q, buildInput(in))
	}
	if err != nil {
		log.Printf("policy: evaluation failed for org %d action %s: %v, using built-in rule", in.OrgID, in.Action, err)
		return rbac.Authorize(in.OrgRole, in.BusinessRole, in.Action), nil
	}
	return allowed, nil
}

// query returns the prepared decision query for policies, compiling it on first use. Compile
// errors are cached with the policy set; other preparation errors are not.
func (e *OPAEvaluator) query(ctx context.Context, policies []string) (rego.PreparedEvalQuery, error) {
	key := policySetKey(policies)
	e.mu.Lock()
	entry, ok := e.prepared[key]
	e.mu.Unlock()
	if ok {
		return entry.query, entry.err
	}

	compiler, err := compile(policies)
	if err != nil {
		entry = preparedQuery{err: err}
	} else {
		q, err := prepareCompiled(ctx, compiler)
		if err != nil {
			return rego.PreparedEvalQuery{}, err
		}
		entry = preparedQuery{query: q}
	}

	e.mu.Lock()
	if len(e.prepared) >= maxPreparedQueries {
		e.prepared = make(map[string]preparedQuery)
	}
	e.prepared[key] = entry
	e.mu.Unlock()
	return entry.query, entry.err
}

// policySetKey identifies an ordered list of modules by content.
func policySetKey(policies []string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range policies {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateRules checks that rules is a Rego module in the business-access package that compiles
// together with the default policy.
func ValidateRules(rules string) error {
	m, err := ast.ParseModule("org.rego", rules)
	if err != nil {
		return fmt.Errorf("parse policy: %w", err)
	}
	if m == nil {
		return fmt.Errorf("parse policy: empty module")
	}
	if got := m.Package.Path.String(); got != "data."+defaultPolicyPackage {
		return fmt.Errorf("policy package must be %s, got %s", defaultPolicyPackage, got)
	}
	if _, err := compile([]string{defaultRegoPolicy, rules}); err != nil {
		return err
	}
	return nil
}

func buildInput(in Input) map[string]interface{} {
	return map[string]interface{}{
		"org_id":        in.OrgID,
		"user_id":       in.UserID,
		"org_role":      string(in.OrgRole),
		"business_id":   in.BusinessID,
		"business_role": string(in.BusinessRole),
		"action":        string(in.Action),
	}
}

func compile(policies []string) (*ast.Compiler, error) {
	modules := make(map[string]string, len(policies))
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}
	return compiler, nil
}

func prepare(ctx context.Context, policies []string) (rego.PreparedEvalQuery, error) {
	compiler, err := compile(policies)
	if err != nil {
		return rego.PreparedEvalQuery{}, err
	}
	return prepareCompiled(ctx, compiler)
}

func prepareCompiled(ctx context.Context, compiler *ast.Compiler) (rego.PreparedEvalQuery, error) {
	q, err := rego.New(rego.Query(decisionQuery), rego.Compiler(compiler)).PrepareForEval(ctx)
	if err != nil {
		return rego.PreparedEvalQuery{}, fmt.Errorf("prepare: %w", err)
	}
	return q, nil
}

func evaluate(ctx context.Context, q rego.PreparedEvalQuery, input map[string]interface{}) (bool, error) {
	rs, err := q.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("decision is %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}
