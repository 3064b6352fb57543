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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/openboard/openboard/internal/rbac"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrAccountLocked      = errors.New("account is locked")
)

// User represents an account in the system. Role is the global role; the
// manager reference is the organisational chain, unrelated to project
// memberships.
type User struct {
	ID                  string
	Email               string
	Name                string
	Surname             string
	Role                rbac.GlobalRole
	ProfilePictureURL   string
	ManagerID           *string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Credentials represents a user's stored password hash
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// AddCredentials stores credentials for a user
	AddCredentials(ctx context.Context, credentials *Credentials) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*User, error)

	// Update updates user information
	Update(ctx context.Context, user *User) error

	// UpdateLockout updates lockout bookkeeping after login attempts
	UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// GetCredentials retrieves a user's credentials
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)

	// UpdatePassword replaces a user's password hash
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
