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
	"os"

	"github.com/openboard/openboard/internal/audit"
	"github.com/openboard/openboard/internal/rbac"
)

const (
	EnvBootstrapAdminEmail    = "OB_BOOTSTRAP_ADMIN_EMAIL"
	EnvBootstrapAdminPassword = "OB_BOOTSTRAP_ADMIN_PASSWORD"
)

// BootstrapService manages the initial initialization of the system
type BootstrapService struct {
	identityService *Service
	auditLogger     audit.Logger
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(identityService *Service, auditLogger audit.Logger) *BootstrapService {
	return &BootstrapService{
		identityService: identityService,
		auditLogger:     auditLogger,
	}
}

// Bootstrap checks for bootstrap configuration and executes it if necessary.
// Account creation is admin-only over the API, so a fresh deployment has no
// way to mint its first admin; this seeds one from the environment.
func (s *BootstrapService) Bootstrap(ctx context.Context) error {
	email := os.Getenv(EnvBootstrapAdminEmail)
	if email == "" {
		return nil
	}

	// 1. Check if ANY admin already exists
	users, err := s.identityService.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	for _, u := range users {
		if u.Role == rbac.GlobalAdmin {
			// Already bootstrapped or admin exists, skip silently
			return nil
		}
	}

	// 2. Promote the user if the account already exists
	user, err := s.identityService.repo.GetByEmail(ctx, email)
	if err == nil && user != nil {
		user.Role = rbac.GlobalAdmin
		if err := s.identityService.repo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to promote bootstrap admin: %w", err)
		}
	} else {
		// 3. Otherwise create the account from the environment
		password := os.Getenv(EnvBootstrapAdminPassword)
		if password == "" {
			return fmt.Errorf("bootstrap user %s not found and %s is not set", email, EnvBootstrapAdminPassword)
		}
		user, err = s.identityService.CreateUser(ctx, CreateUserInput{
			Email:    email,
			Password: password,
			Name:     "Admin",
			Role:     rbac.GlobalAdmin,
		})
		if err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
	}

	// 4. Record audit log
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdminBootstrap,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{
			"email":        email,
			audit.AttrRole: string(rbac.GlobalAdmin),
		},
	})

	fmt.Printf("Successfully bootstrapped initial admin: %s\n", email)
	return nil
}
