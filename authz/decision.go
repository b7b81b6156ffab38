// Package authz holds the shared ALLOW/DENY decision rule applied by both the
// server middleware adapter and the client route guard. Decisions are pure
// functions of (caller, required roles) and safe to invoke concurrently.
package authz

import "github.com/upb/rbac-dashboard/models"

// Reason explains why a decision denied access
type Reason string

const (
	// ReasonUnauthenticated means no principal was present
	ReasonUnauthenticated Reason = "unauthenticated"

	// ReasonInsufficientRole means the caller's role ranks below the required role
	ReasonInsufficientRole Reason = "insufficient_role"

	// ReasonRoleNotAllowed means the caller's role is not in the route's allow-list
	ReasonRoleNotAllowed Reason = "role_not_allowed"
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Decide applies the minimum-rank rule:
//  1. no principal -> DENY unauthenticated
//  2. no required role -> ALLOW (any authenticated principal passes)
//  3. ALLOW iff rank(principal.role) >= rank(required); unknown roles rank 0
func Decide(p *models.Principal, required models.Role) Decision {
	if p == nil {
		return deny(ReasonUnauthenticated)
	}
	if required == "" {
		return allow
	}
	if p.Role.Rank() >= required.Rank() {
		return allow
	}
	return deny(ReasonInsufficientRole)
}

// DecideAllowList applies the coarser exact-membership rule used for
// resource-type-specific checks. It is evaluated independently of the role
// hierarchy: an admin is only allowed if "admin" appears in the list.
func DecideAllowList(p *models.Principal, allowed ...models.Role) Decision {
	if p == nil {
		return deny(ReasonUnauthenticated)
	}
	if len(allowed) == 0 {
		return allow
	}
	for _, role := range allowed {
		if p.Role == role {
			return allow
		}
	}
	return deny(ReasonRoleNotAllowed)
}
