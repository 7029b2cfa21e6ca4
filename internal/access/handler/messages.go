package handler

import (
	auditdomain "zeno-access/internal/audit/domain"
	bizdomain "zeno-access/internal/businessuser/domain"
	"zeno-access/internal/menu"
	"zeno-access/internal/platform/rbac"
	"zeno-access/internal/taxonomy"
)

// GetMenuRequest asks for the caller's sidebar. It has no fields; the role comes from the token.
type GetMenuRequest struct{}

// GetMenuResponse is the sidebar filtered for the caller's organization role.
type GetMenuResponse struct {
	Role  string      `json:"role"`
	Items []menu.Item `json:"items"`
	Keys  []string    `json:"keys"`
}

// GetFeaturesRequest asks for the caller's feature, page and branch permissions.
type GetFeaturesRequest struct{}

// GetFeaturesResponse carries the full feature and page-visibility maps for the caller's role.
type GetFeaturesResponse struct {
	Role         string                    `json:"role"`
	Features     map[taxonomy.Feature]bool `json:"features"`
	Views        map[taxonomy.View]bool    `json:"views"`
	BranchAccess taxonomy.BranchAccessType `json:"branch_access"`
}

// GetBusinessPermissionsRequest names the business to evaluate.
type GetBusinessPermissionsRequest struct {
	BusinessID int64 `json:"business_id"`
}

// GetBusinessPermissionsResponse is the caller's permission set in one business.
type GetBusinessPermissionsResponse struct {
	BusinessID  int64         `json:"business_id"`
	Permissions rbac.Decision `json:"permissions"`
}

// AuthorizeBusinessActionRequest asks whether the caller may perform Action on BusinessID.
type AuthorizeBusinessActionRequest struct {
	BusinessID int64  `json:"business_id"`
	Action     string `json:"action"`
}

// AuthorizeBusinessActionResponse is the decision. Reason is set when Allowed is false.
type AuthorizeBusinessActionResponse struct {
	Allowed      bool   `json:"allowed"`
	BusinessRole string `json:"business_role"`
	Reason       string `json:"reason,omitempty"`
}

// ListVisibleBusinessesRequest carries the business ids to filter. Ids outside the caller's
// organization are dropped; an empty list selects all of the organization's businesses.
type ListVisibleBusinessesRequest struct {
	BusinessIDs []int64 `json:"business_ids"`
}

// ListVisibleBusinessesResponse lists the ids the caller may see, in request order.
type ListVisibleBusinessesResponse struct {
	BusinessIDs []int64 `json:"business_ids"`
}

// RegisterBusinessRequest creates a business in the caller's organization.
type RegisterBusinessRequest struct {
	Name string `json:"name"`
}

// RegisterBusinessResponse returns the new business and the caller's owner assignment.
type RegisterBusinessResponse struct {
	Business *bizdomain.Business   `json:"business"`
	Owner    *bizdomain.Assignment `json:"owner"`
}

// AssignMemberRequest adds UserID to BusinessID with Role.
type AssignMemberRequest struct {
	BusinessID int64  `json:"business_id"`
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
}

// SelfAssignRequest adds the caller to BusinessID with Role.
type SelfAssignRequest struct {
	BusinessID int64  `json:"business_id"`
	Role       string `json:"role"`
}

// ChangeMemberRoleRequest sets the role of an assignment.
type ChangeMemberRoleRequest struct {
	AssignmentID int64  `json:"assignment_id"`
	Role         string `json:"role"`
}

// MemberResponse returns the assignment created or updated.
type MemberResponse struct {
	Member *bizdomain.Assignment `json:"member"`
}

// RemoveMemberRequest deletes an assignment.
type RemoveMemberRequest struct {
	AssignmentID int64 `json:"assignment_id"`
}

// RemoveMemberResponse is empty.
type RemoveMemberResponse struct{}

// ListMembersRequest names the business whose team to list.
type ListMembersRequest struct {
	BusinessID int64 `json:"business_id"`
}

// ListMembersResponse lists a business's assignments.
type ListMembersResponse struct {
	Members []*bizdomain.Assignment `json:"members"`
}

// ListAuditLogsRequest pages through the caller's organization audit log, newest first.
type ListAuditLogsRequest struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

// ListAuditLogsResponse is one page of audit entries.
type ListAuditLogsResponse struct {
	Logs []*auditdomain.AuditLog `json:"logs"`
}
