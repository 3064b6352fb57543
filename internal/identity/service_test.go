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

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/openboard/openboard/internal/audit"
	"github.com/openboard/openboard/internal/identity"
	"github.com/openboard/openboard/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserRepository implements identity.UserRepository for testing
type MockUserRepository struct {
	users       map[string]*identity.User
	credentials map[string]*identity.Credentials
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:       make(map[string]*identity.User),
		credentials: make(map[string]*identity.Credentials),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) AddCredentials(ctx context.Context, c *identity.Credentials) error {
	m.credentials[c.UserID] = c
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*identity.User, error) {
	var users []*identity.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	if u, ok := m.users[userID]; ok {
		u.FailedLoginAttempts = failedAttempts
		u.LockedUntil = lockedUntil
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	if c, ok := m.credentials[userID]; ok {
		return c, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	m.credentials[userID] = &identity.Credentials{UserID: userID, PasswordHash: passwordHash}
	return nil
}

func newTestService(repo *MockUserRepository) *identity.Service {
	hasher := identity.NewPasswordHasher(8*1024, 1, 1, 16, 32)
	return identity.NewService(repo, hasher, audit.NewSlogLogger(), 3, 15*time.Minute)
}

func TestCreateUserDefaultsRole(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	user, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "dev@example.com",
		Password: "password123",
		Name:     "John",
		Surname:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, rbac.GlobalContributor, user.Role)
	assert.NotEmpty(t, user.ID)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, identity.ErrUserAlreadyExists)
}

func TestCreateUserRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(NewMockUserRepository())

	_, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "not-an-email", Password: "password123",
	})
	assert.ErrorIs(t, err, identity.ErrInvalidEmail)
}

func TestAuthenticate(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	created, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123", Role: rbac.GlobalManager,
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "dev@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "dev@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestAuthenticateLockout(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123",
	})
	require.NoError(t, err)

	// Three failures hit the lockout threshold.
	for range 3 {
		_, err = svc.Authenticate(context.Background(), "dev@example.com", "wrong")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	}

	// Even the correct password is refused while locked.
	_, err = svc.Authenticate(context.Background(), "dev@example.com", "password123")
	assert.ErrorIs(t, err, identity.ErrAccountLocked)
}

func TestUpdateUserPartial(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	created, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123", Name: "John", Surname: "Doe",
	})
	require.NoError(t, err)

	newName := "Johnny"
	updated, err := svc.UpdateUser(context.Background(), created.ID, identity.UpdateUserInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "Doe", updated.Surname)
	assert.Equal(t, "dev@example.com", updated.Email)
}

func TestUpdateUserClearManager(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newTestService(repo)

	managerID := "mgr-1"
	created, err := svc.CreateUser(context.Background(), identity.CreateUserInput{
		Email: "dev@example.com", Password: "password123", ManagerID: &managerID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.ManagerID)

	updated, err := svc.UpdateUser(context.Background(), created.ID, identity.UpdateUserInput{ClearManager: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ManagerID)
}

func TestUpdateUserInputChangeReporting(t *testing.T) {
	role := rbac.GlobalManager
	managerID := "mgr-1"

	assert.False(t, identity.UpdateUserInput{}.ChangesRole())
	assert.True(t, identity.UpdateUserInput{Role: &role}.ChangesRole())
	assert.True(t, identity.UpdateUserInput{ManagerID: &managerID}.ChangesManager())
	assert.True(t, identity.UpdateUserInput{ClearManager: true}.ChangesManager())
	assert.False(t, identity.UpdateUserInput{}.ChangesManager())
}
