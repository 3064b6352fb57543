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

import "context"

// TaskAccessLevel is one acceptable way to gain access to a task. A check
// may list several levels; any satisfied level allows.
type TaskAccessLevel string

const (
	// AccessAssigned is satisfied by any task membership, regardless of the
	// task role held.
	AccessAssigned TaskAccessLevel = "assigned"

	// AccessProjectMember is satisfied by any membership on the owning
	// project.
	AccessProjectMember TaskAccessLevel = "project_member"

	// AccessProjectCollaborator is satisfied by a collaborator-or-higher
	// membership on the owning project.
	AccessProjectCollaborator TaskAccessLevel = "project_collaborator"

	// AccessProjectManager is satisfied by a manager-or-higher membership on
	// the owning project.
	AccessProjectManager TaskAccessLevel = "project_manager"
)

// Engine is the access decision engine. Every decision is a fresh, stateless
// evaluation: the admin bypass, capability matrix, and membership comparisons
// are defined once here instead of being duplicated per handler. Decisions
// are safe for concurrent use; the engine holds no mutable state.
type Engine struct {
	resolver MembershipResolver
}

// NewEngine creates an engine backed by the given membership resolver.
func NewEngine(resolver MembershipResolver) *Engine {
	return &Engine{resolver: resolver}
}

// CheckCapability decides a pure capability requirement against the
// principal's global role. No membership lookup is performed.
func (e *Engine) CheckCapability(p *Principal, capability Capability) Decision {
	if p == nil {
		return Deny(ReasonUnauthenticated)
	}
	if !CanPerform(p.Role, capability) {
		d := Deny(ReasonInsufficientCapability)
		d.Capability = capability
		return d
	}
	return Allow()
}

// CheckProjectRole decides a minimum-project-role requirement. Admins are
// allowed immediately without any lookup. Absence of a membership denies; a
// membership below the required role denies with the required role attached.
func (e *Engine) CheckProjectRole(ctx context.Context, p *Principal, projectID string, required ProjectRole) Decision {
	if p == nil {
		return Deny(ReasonUnauthenticated)
	}
	if p.Role == GlobalAdmin {
		return Allow()
	}

	exists, err := e.resolver.ResolveProject(ctx, projectID)
	if err != nil {
		return Deny(ReasonResolverUnavailable)
	}
	if !exists {
		return Deny(ReasonResourceNotFound)
	}

	membership, err := e.resolver.ResolveMembership(ctx, p.ID, projectID)
	if err != nil {
		return Deny(ReasonResolverUnavailable)
	}
	if membership == nil {
		return Deny(ReasonNotAMember)
	}
	if !HasProjectRoleOrHigher(membership.Role, required) {
		d := Deny(ReasonInsufficientProjectRole)
		d.RequiredRole = required
		return d
	}
	return Allow()
}

// CheckTaskAccess decides a task requirement given a set of acceptable access
// levels. Both the task membership and the project membership are resolved
// independently, then each requested level is evaluated against them; the
// first satisfied level allows. Task roles grant no hierarchy: assignment
// presence alone satisfies AccessAssigned.
func (e *Engine) CheckTaskAccess(ctx context.Context, p *Principal, taskID string, levels ...TaskAccessLevel) Decision {
	if p == nil {
		return Deny(ReasonUnauthenticated)
	}
	if p.Role == GlobalAdmin {
		return Allow()
	}

	task, err := e.resolver.ResolveTask(ctx, taskID)
	if err != nil {
		return Deny(ReasonResolverUnavailable)
	}
	if !task.Exists {
		return Deny(ReasonResourceNotFound)
	}

	taskMembership, err := e.resolver.ResolveTaskMembership(ctx, p.ID, taskID)
	if err != nil {
		return Deny(ReasonResolverUnavailable)
	}
	membership, err := e.resolver.ResolveMembership(ctx, p.ID, task.ProjectID)
	if err != nil {
		return Deny(ReasonResolverUnavailable)
	}

	for _, level := range levels {
		switch level {
		case AccessAssigned:
			if taskMembership != nil {
				return Allow()
			}
		case AccessProjectMember:
			if membership != nil {
				return Allow()
			}
		case AccessProjectCollaborator:
			if membership != nil && HasProjectRoleOrHigher(membership.Role, ProjectCollaborator) {
				return Allow()
			}
		case AccessProjectManager:
			if membership != nil && HasProjectRoleOrHigher(membership.Role, ProjectManager) {
				return Allow()
			}
		}
	}
	return Deny(ReasonNoTaskAccess)
}

// UserUpdate describes the sensitive parts of a profile update for
// self-service authorization.
type UserUpdate struct {
	TargetUserID   string
	ChangesRole    bool
	ChangesManager bool
}

// CheckUserUpdate decides a profile update. Admins may update anyone,
// including roles and manager assignments. Everyone else may update only
// their own profile and never their own role or manager.
func (e *Engine) CheckUserUpdate(p *Principal, update UserUpdate) Decision {
	if p == nil {
		return Deny(ReasonUnauthenticated)
	}
	if p.Role == GlobalAdmin {
		return Allow()
	}
	if p.ID != update.TargetUserID {
		return Deny(ReasonForbiddenNotSelf)
	}
	if update.ChangesRole {
		return Deny(ReasonForbiddenSelfRoleChange)
	}
	if update.ChangesManager {
		return Deny(ReasonForbiddenSelfManagerChange)
	}
	return Allow()
}
