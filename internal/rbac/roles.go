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

import "fmt"

// GlobalRole is the account-wide role of a user. Roles are closed: values are
// constructed via the constants below or ParseGlobalRole, never from raw
// request strings.
type GlobalRole string

const (
	GlobalAdmin       GlobalRole = "admin"
	GlobalManager     GlobalRole = "manager"
	GlobalContributor GlobalRole = "contributor"
	GlobalViewer      GlobalRole = "viewer"
)

// ProjectRole is a user's role within a single project, recorded in a
// membership.
type ProjectRole string

const (
	ProjectOwner        ProjectRole = "owner"
	ProjectManager      ProjectRole = "manager"
	ProjectCollaborator ProjectRole = "collaborator"
	ProjectViewer       ProjectRole = "viewer"
)

// TaskRole is a user's role on a single task. Task roles carry no hierarchy:
// holding any of them grants assignment-level access and nothing more.
type TaskRole string

const (
	TaskAssigned TaskRole = "assigned"
	TaskReviewer TaskRole = "reviewer"
)

// globalRoleRank orders global roles by privilege. Higher is more privileged.
// An unknown role has rank 0 and therefore never satisfies a requirement.
var globalRoleRank = map[GlobalRole]int{
	GlobalAdmin:       4,
	GlobalManager:     3,
	GlobalContributor: 2,
	GlobalViewer:      1,
}

// projectRoleRank orders project roles by privilege.
var projectRoleRank = map[ProjectRole]int{
	ProjectOwner:        4,
	ProjectManager:      3,
	ProjectCollaborator: 2,
	ProjectViewer:       1,
}

// Valid reports whether the role is one of the defined global roles.
func (r GlobalRole) Valid() bool {
	_, ok := globalRoleRank[r]
	return ok
}

// Valid reports whether the role is one of the defined project roles.
func (r ProjectRole) Valid() bool {
	_, ok := projectRoleRank[r]
	return ok
}

// Valid reports whether the role is one of the defined task roles.
func (r TaskRole) Valid() bool {
	return r == TaskAssigned || r == TaskReviewer
}

// ParseGlobalRole converts a stored or submitted string into a GlobalRole,
// rejecting anything outside the closed set.
func ParseGlobalRole(s string) (GlobalRole, error) {
	r := GlobalRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown global role %q", s)
	}
	return r, nil
}

// ParseProjectRole converts a string into a ProjectRole.
func ParseProjectRole(s string) (ProjectRole, error) {
	r := ProjectRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown project role %q", s)
	}
	return r, nil
}

// ParseTaskRole converts a string into a TaskRole.
func ParseTaskRole(s string) (TaskRole, error) {
	r := TaskRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown task role %q", s)
	}
	return r, nil
}

// HasRoleOrHigher reports whether actual dominates or equals required in the
// global role hierarchy. Equal roles satisfy the requirement; unknown roles
// never do.
func HasRoleOrHigher(actual, required GlobalRole) bool {
	return globalRoleRank[actual] >= globalRoleRank[required] && globalRoleRank[required] > 0
}

// HasProjectRoleOrHigher reports whether actual dominates or equals required
// in the project role hierarchy.
func HasProjectRoleOrHigher(actual, required ProjectRole) bool {
	return projectRoleRank[actual] >= projectRoleRank[required] && projectRoleRank[required] > 0
}

// Capability is a named boolean permission evaluated solely from a global
// role.
type Capability string

const (
	CapManageUsers          Capability = "canManageUsers"
	CapManageRoles          Capability = "canManageRoles"
	CapCreateProjects       Capability = "canCreateProjects"
	CapDeleteProjects       Capability = "canDeleteProjects"
	CapManageProjectMembers Capability = "canManageProjectMembers"
	CapCreateTasks          Capability = "canCreateTasks"
	CapUpdateTasks          Capability = "canUpdateTasks"
	CapDeleteTasks          Capability = "canDeleteTasks"
	CapUpdateTaskStatus     Capability = "canUpdateTaskStatus"
	CapViewProjects         Capability = "canViewProjects"
	CapViewTasks            Capability = "canViewTasks"
)

// rolePermissions is the permission matrix mapping each global role to its
// capability set. The matrix is fixed at compile time; a capability missing
// for a role is false.
var rolePermissions = map[GlobalRole]map[Capability]bool{
	GlobalAdmin: {
		CapManageUsers:          true,
		CapManageRoles:          true,
		CapCreateProjects:       true,
		CapDeleteProjects:       true,
		CapManageProjectMembers: true,
		CapCreateTasks:          true,
		CapUpdateTasks:          true,
		CapDeleteTasks:          true,
		CapUpdateTaskStatus:     true,
		CapViewProjects:         true,
		CapViewTasks:            true,
	},
	GlobalManager: {
		CapCreateProjects:       true,
		CapDeleteProjects:       true,
		CapManageProjectMembers: true,
		CapCreateTasks:          true,
		CapUpdateTasks:          true,
		CapDeleteTasks:          true,
		CapUpdateTaskStatus:     true,
		CapViewProjects:         true,
		CapViewTasks:            true,
	},
	GlobalContributor: {
		CapCreateTasks:      true,
		CapUpdateTasks:      true,
		CapUpdateTaskStatus: true,
		CapViewProjects:     true,
		CapViewTasks:        true,
	},
	GlobalViewer: {
		CapViewProjects: true,
		CapViewTasks:    true,
	},
}

// CanPerform reports whether a global role grants the given capability.
// Unknown roles and unknown capabilities are false, never an error.
func CanPerform(role GlobalRole, capability Capability) bool {
	return rolePermissions[role][capability]
}
