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

// Membership records a user's role on a project, keyed by (user, project).
type Membership struct {
	UserID    string
	ProjectID string
	Role      ProjectRole
}

// TaskMembership records a user's role on a task, keyed by (user, task).
type TaskMembership struct {
	UserID string
	TaskID string
	Role   TaskRole
}

// TaskRef locates a task and its owning project.
type TaskRef struct {
	Exists    bool
	ProjectID string
}

// MembershipResolver is the storage collaborator the engine reads membership
// state through. Lookups are idempotent reads returning the latest committed
// value; absence is reported as a nil record, not an error. The engine
// performs no caching and no retries on top of it.
type MembershipResolver interface {
	// ResolveMembership returns the user's membership on a project, or nil
	// if the user is not a member.
	ResolveMembership(ctx context.Context, userID, projectID string) (*Membership, error)

	// ResolveTaskMembership returns the user's membership on a task, or nil
	// if the user is not assigned.
	ResolveTaskMembership(ctx context.Context, userID, taskID string) (*TaskMembership, error)

	// ResolveProject reports whether a project exists.
	ResolveProject(ctx context.Context, projectID string) (bool, error)

	// ResolveTask locates a task and the project that owns it.
	ResolveTask(ctx context.Context, taskID string) (TaskRef, error)
}
