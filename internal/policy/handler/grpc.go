// Package handler serves organization policy CRUD over gRPC. Policies are Rego modules in the
// zeno.business_access package layered over the default business-access rules by the OPA
// evaluator. Only organization owners may manage them, and only for their own organization.
package handler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"zeno-access/internal/policy/domain"
	"zeno-access/internal/policy/engine"
	"zeno-access/internal/policy/repository"
	"zeno-access/internal/server/interceptors"
)

// Server implements PolicyServiceServer.
type Server struct {
	repo repository.Repository
}

// NewServer returns a new Policy gRPC server. repo may be nil; then every RPC returns Unimplemented.
func NewServer(repo repository.Repository) *Server {
	return &Server{repo: repo}
}

// CreatePolicy validates and stores a new policy for the caller's organization.
func (s *Server) CreatePolicy(ctx context.Context, req *CreatePolicyRequest) (*PolicyResponse, error) {
	orgID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRules(req.Rules); err != nil {
		return nil, err
	}
	p := &domain.Policy{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Rules:     req.Rules,
		Enabled:   req.Enabled,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.repo.Create(ctx, p); err != nil {
		log.Printf("policy: create for org %d: %v", orgID, err)
		return nil, status.Error(codes.Internal, "failed to create policy")
	}
	return &PolicyResponse{Policy: p}, nil
}

// UpdatePolicy replaces the rules and enabled flag of a policy in the caller's organization.
func (s *Server) UpdatePolicy(ctx context.Context, req *UpdatePolicyRequest) (*PolicyResponse, error) {
	orgID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.get(ctx, orgID, req.PolicyID)
	if err != nil {
		return nil, err
	}
	if err := validateRules(req.Rules); err != nil {
		return nil, err
	}
	existing.Rules = req.Rules
	existing.Enabled = req.Enabled
	if err := s.repo.Update(ctx, existing); err != nil {
		log.Printf("policy: update %s: %v", existing.ID, err)
		return nil, status.Error(codes.Internal, "failed to update policy")
	}
	return &PolicyResponse{Policy: existing}, nil
}

// DeletePolicy removes a policy from the caller's organization.
func (s *Server) DeletePolicy(ctx context.Context, req *DeletePolicyRequest) (*DeletePolicyResponse, error) {
	orgID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, orgID, req.PolicyID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, req.PolicyID); err != nil {
		log.Printf("policy: delete %s: %v", req.PolicyID, err)
		return nil, status.Error(codes.Internal, "failed to delete policy")
	}
	return &DeletePolicyResponse{}, nil
}

// ListPolicies returns every policy of the caller's organization, enabled or not.
func (s *Server) ListPolicies(ctx context.Context, req *ListPoliciesRequest) (*ListPoliciesResponse, error) {
	orgID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		log.Printf("policy: list for org %d: %v", orgID, err)
		return nil, status.Error(codes.Internal, "failed to list policies")
	}
	if list == nil {
		list = []*domain.Policy{}
	}
	return &ListPoliciesResponse{Policies: list}, nil
}

// requireOwner returns the caller's org id when the caller is an organization owner.
func (s *Server) requireOwner(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, status.Error(codes.Unimplemented, "policy storage not configured")
	}
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == 0 {
		return 0, status.Error(codes.Unauthenticated, "user context required")
	}
	orgID, _ := interceptors.GetOrgID(ctx)
	if orgID == 0 {
		return 0, status.Error(codes.PermissionDenied, "organization context required")
	}
	role, _ := interceptors.GetOrgRole(ctx)
	if !role.IsOwner() {
		return 0, status.Error(codes.PermissionDenied, "organization owner role required")
	}
	return orgID, nil
}

// get loads a policy, hiding policies of other organizations behind NotFound.
func (s *Server) get(ctx context.Context, orgID int64, id string) (*domain.Policy, error) {
	if strings.TrimSpace(id) == "" {
		return nil, status.Error(codes.InvalidArgument, "policy_id is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Printf("policy: get %s: %v", id, err)
		return nil, status.Error(codes.Internal, "failed to load policy")
	}
	if p == nil || p.OrgID != orgID {
		return nil, status.Error(codes.NotFound, "policy not found")
	}
	return p, nil
}

func validateRules(rules string) error {
	if strings.TrimSpace(rules) == "" {
		return status.Error(codes.InvalidArgument, "rules are required")
	}
	if err := engine.ValidateRules(rules); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid policy: %v", err)
	}
	return nil
}
