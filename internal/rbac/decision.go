// Copyright 2026 The Openboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

// Principal is the authenticated actor for a request. It is supplied by the
// authentication layer from a verified token and never mutated here.
type Principal struct {
	ID   string
	Role GlobalRole
}

// DenyReason identifies why a decision denied access. Callers surface the
// reason verbatim; it is never downgraded to a generic forbidden.
type DenyReason string

const (
	ReasonUnauthenticated            DenyReason = "unauthenticated"
	ReasonResourceNotFound           DenyReason = "resource_not_found"
	ReasonNotAMember                 DenyReason = "not_a_member"
	ReasonInsufficientCapability     DenyReason = "insufficient_capability"
	ReasonInsufficientProjectRole    DenyReason = "insufficient_project_role"
	ReasonNoTaskAccess               DenyReason = "no_task_access"
	ReasonForbiddenSelfRoleChange    DenyReason = "forbidden_self_role_change"
	ReasonForbiddenSelfManagerChange DenyReason = "forbidden_self_manager_change"
	ReasonForbiddenNotSelf           DenyReason = "forbidden_not_self"
	ReasonResolverUnavailable        DenyReason = "resolver_unavailable"
)

// Decision is the verdict of the access decision engine. A decision is either
// fully allowed or denied with a reason; there is no partial outcome.
type Decision struct {
	Allowed bool
	Reason  DenyReason

	// Capability is set when the denial was a capability check.
	Capability Capability
	// RequiredRole is set when the denial was a project role check.
	RequiredRole ProjectRole
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}
