package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// AccessService method overrides. Team mutations are recorded as the same actions the team
// workflow writes; authorization checks are recorded as "authorize" on "business".
var methodOverrides = map[string]ActionResource{
	"/zeno.access.v1.AccessService/AssignMember":            {ActionMemberAssigned, ResourceBusinessUser},
	"/zeno.access.v1.AccessService/SelfAssign":              {ActionMemberSelfAssigned, ResourceBusinessUser},
	"/zeno.access.v1.AccessService/ChangeMemberRole":        {ActionMemberRoleChanged, ResourceBusinessUser},
	"/zeno.access.v1.AccessService/RemoveMember":            {ActionMemberRemoved, ResourceBusinessUser},
	"/zeno.access.v1.AccessService/RegisterBusiness":        {ActionBusinessRegistered, ResourceBusiness},
	"/zeno.access.v1.AccessService/AuthorizeBusinessAction": {"authorize", ResourceBusiness},
	"/zeno.access.v1.AccessService/GetBusinessPermissions":  {"get", "business_permissions"},
	"/zeno.access.v1.AccessService/ListVisibleBusinesses":   {"list", ResourceBusiness},
}

// ParseFullMethod returns action and resource for a gRPC full method (e.g. /zeno.access.v1.AccessService/GetMenu).
// Action is a verb: get, list, create, update, delete, or a lowercase method name for others.
// Resource is derived from the service name (e.g. AccessService -> access) unless the method has an override.
func ParseFullMethod(fullMethod string) ActionResource {
	if ar, ok := methodOverrides[fullMethod]; ok {
		return ar
	}
	// fullMethod format: /package.v1.ServiceName/MethodName
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	resource := serviceToResource(beforeSlash[dot+1:])
	return ActionResource{Action: methodToAction(method), Resource: resource}
}

func serviceToResource(serviceName string) string {
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

func methodToAction(method string) string {
	switch {
	case strings.HasPrefix(method, "Get") && method != "Get":
		return "get"
	case strings.HasPrefix(method, "List"):
		return "list"
	case strings.HasPrefix(method, "Create"):
		return "create"
	case strings.HasPrefix(method, "Update"), strings.HasPrefix(method, "Change"):
		return "update"
	case strings.HasPrefix(method, "Delete"), strings.HasPrefix(method, "Remove"):
		return "delete"
	case strings.HasPrefix(method, "Assign"), strings.HasPrefix(method, "Add"):
		return "add"
	case strings.HasPrefix(method, "Authorize"), strings.HasPrefix(method, "Check"):
		return "authorize"
	default:
		return strings.ToLower(method)
	}
}
