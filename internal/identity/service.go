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
	"fmt"
	"strings"
	"time"

	"github.com/openboard/openboard/internal/audit"
	"github.com/openboard/openboard/internal/id"
	"github.com/openboard/openboard/internal/rbac"
)

// Service provides user account business logic
type Service struct {
	repo               UserRepository
	hasher             *PasswordHasher
	auditLogger        audit.Logger
	lockoutMaxAttempts int
	lockoutDuration    time.Duration
}

// NewService creates a new identity service
func NewService(
	repo UserRepository,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
	lockoutMaxAttempts int,
	lockoutDuration time.Duration,
) *Service {
	return &Service{
		repo:               repo,
		hasher:             hasher,
		auditLogger:        auditLogger,
		lockoutMaxAttempts: lockoutMaxAttempts,
		lockoutDuration:    lockoutDuration,
	}
}

// CreateUserInput carries the fields for account creation.
type CreateUserInput struct {
	Email             string
	Password          string
	Name              string
	Surname           string
	Role              rbac.GlobalRole // empty defaults to contributor
	ProfilePictureURL string
	ManagerID         *string
}

// CreateUser creates an account with credentials. An empty role defaults to
// contributor.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if !isValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}

	role := input.Role
	if role == "" {
		role = rbac.GlobalContributor
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown global role %q", role)
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	user := &User{
		ID:                id.NewUUIDv7(),
		Email:             input.Email,
		Name:              input.Name,
		Surname:           input.Surname,
		Role:              role,
		ProfilePictureURL: input.ProfilePictureURL,
		ManagerID:         input.ManagerID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.AddCredentials(ctx, &Credentials{UserID: user.ID, PasswordHash: passwordHash}); err != nil {
		return nil, fmt.Errorf("failed to add credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{"email": user.Email, audit.AttrRole: string(user.Role)},
	})

	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ListUsers retrieves all users
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput carries a partial profile update. Nil fields are left
// unchanged. RoleChanged / ManagerChanged reporting is what the access
// decision engine keys its self-service rules on.
type UpdateUserInput struct {
	Email             *string
	Name              *string
	Surname           *string
	Role              *rbac.GlobalRole
	ProfilePictureURL *string
	ManagerID         *string
	ClearManager      bool
	Password          *string
}

// ChangesRole reports whether the update touches the global role.
func (u UpdateUserInput) ChangesRole() bool { return u.Role != nil }

// ChangesManager reports whether the update touches the manager assignment.
func (u UpdateUserInput) ChangesManager() bool { return u.ManagerID != nil || u.ClearManager }

// UpdateUser applies a partial update to a user. Authorization (who may
// update whom, and which fields) is decided by the caller before invoking
// this.
func (s *Service) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if !isValidEmail(*input.Email) {
			return nil, ErrInvalidEmail
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Surname != nil {
		user.Surname = *input.Surname
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("unknown global role %q", *input.Role)
		}
		user.Role = *input.Role
	}
	if input.ProfilePictureURL != nil {
		user.ProfilePictureURL = *input.ProfilePictureURL
	}
	if input.ClearManager {
		user.ManagerID = nil
	} else if input.ManagerID != nil {
		user.ManagerID = input.ManagerID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if input.Password != nil && *input.Password != "" {
		passwordHash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypePasswordChanged,
			ActorID:  user.ID,
			Resource: "user",
		})
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		ActorID:  user.ID,
		Resource: "user",
	})

	return user, nil
}

// DeleteUser deletes a user
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		ActorID:  userID,
		Resource: "user",
	})
	return nil
}

// Authenticate authenticates a user with email and password, applying the
// lockout policy on repeated failures.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: email,
			Metadata: map[string]any{audit.AttrReason: "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "locked_out"},
		})
		return nil, ErrAccountLocked
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, credentials.PasswordHash)
	if err != nil || !valid {
		newAttempts := user.FailedLoginAttempts + 1
		var newLockedUntil *time.Time

		if newAttempts >= s.lockoutMaxAttempts {
			until := time.Now().Add(s.lockoutDuration)
			newLockedUntil = &until
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeUserLocked,
				ActorID:  user.ID,
				Resource: "login",
				Metadata: map[string]any{audit.AttrAttempts: newAttempts},
			})
		}

		_ = s.repo.UpdateLockout(ctx, user.ID, newAttempts, newLockedUntil)

		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{
				audit.AttrReason:   "invalid_password",
				audit.AttrAttempts: newAttempts,
			},
		})

		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		ActorID:  user.ID,
		Resource: "login",
	})

	return user, nil
}

// isValidEmail performs a minimal structural check.
func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
