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

package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/openboard/openboard/internal/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository implements activity.Repository for testing
type MockRepository struct {
	entries    []*activity.Entry
	lastFilter activity.Filter
}

func (m *MockRepository) Create(ctx context.Context, entry *activity.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*activity.Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, activity.ErrEntryNotFound
}

func (m *MockRepository) List(ctx context.Context, filter activity.Filter) ([]*activity.Entry, error) {
	m.lastFilter = filter
	return m.entries, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return activity.ErrEntryNotFound
}

func (m *MockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestRecordAssignsID(t *testing.T) {
	repo := &MockRepository{}
	svc := activity.NewService(repo)

	entry, err := svc.Record(context.Background(), "u1", activity.EntityProject, "p1",
		activity.ActionCreated, "Created project \"Demo\"")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "u1", entry.AgentID)
	require.Len(t, repo.entries, 1)
}

func TestListDefaultsLimit(t *testing.T) {
	repo := &MockRepository{}
	svc := activity.NewService(repo)

	_, err := svc.List(context.Background(), activity.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), activity.Filter{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastFilter.Limit)
}

func TestTypedHelpersDescribeEntities(t *testing.T) {
	repo := &MockRepository{}
	svc := activity.NewService(repo)

	e, err := svc.TaskStatusChanged(context.Background(), "u1", "t1", "Ship it", "done")
	require.NoError(t, err)
	assert.Equal(t, activity.EntityTask, e.EntityType)
	assert.Equal(t, activity.ActionStatusChanged, e.Action)
	assert.Contains(t, e.Description, "Ship it")
	assert.Contains(t, e.Description, "done")
}

func TestDeleteMissingEntry(t *testing.T) {
	repo := &MockRepository{}
	svc := activity.NewService(repo)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, activity.ErrEntryNotFound)
}
