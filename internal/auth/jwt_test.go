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

package auth_test

import (
	"testing"
	"time"

	"github.com/openboard/openboard/internal/auth"
	"github.com/openboard/openboard/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := auth.NewTokenService([]byte("test-secret"), "openboard", time.Hour)

	token, err := svc.Issue("user-1", "dev@example.com", rbac.GlobalContributor)
	require.NoError(t, err)

	principal, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, rbac.GlobalContributor, principal.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := auth.NewTokenService([]byte("test-secret"), "openboard", -time.Minute)

	token, err := svc.Issue("user-1", "dev@example.com", rbac.GlobalViewer)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService([]byte("secret-a"), "openboard", time.Hour)
	verifier := auth.NewTokenService([]byte("secret-b"), "openboard", time.Hour)

	token, err := issuer.Issue("user-1", "dev@example.com", rbac.GlobalAdmin)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := auth.NewTokenService([]byte("test-secret"), "openboard", time.Hour)

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
