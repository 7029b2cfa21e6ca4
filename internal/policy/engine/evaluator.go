package engine

import (
	"context"

	"zeno-access/internal/platform/rbac"
	roledomain "zeno-access/internal/role/domain"
)

// Input is one business-action authorization request.
type Input struct {
	OrgID        int64
	UserID       int64
	OrgRole      roledomain.OrgRole
	BusinessID   int64
	BusinessRole roledomain.BusinessRole
	Action       rbac.Action
}

// Evaluator decides business actions using OPA or other engines.
type Evaluator interface {
	// EvaluateBusinessAction reports whether the caller described by in may perform in.Action.
	EvaluateBusinessAction(ctx context.Context, in Input) (bool, error)
}

// StaticEvaluator applies the built-in rank rule and organization-owner override with no
// per-org customization.
type StaticEvaluator struct{}

// EvaluateBusinessAction implements Evaluator. It never returns an error.
func (StaticEvaluator) EvaluateBusinessAction(ctx context.Context, in Input) (bool, error) {
	return rbac.Authorize(in.OrgRole, in.BusinessRole, in.Action), nil
}
