// Copyright 2026 The OpenTrusty Authors
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

package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/authz"
	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
)

func newTestRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client, ""), mr
}

func sampleSession(id string, now time.Time) *session.Session {
	return &session.Session{
		ID:         id,
		Role:       rbac.RoleManager,
		User:       session.User{Name: "Amara Okafor", Initials: "AO"},
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(8 * time.Hour),
	}
}

func TestSessionRepository_CreateGet(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	want := sampleSession("s1", now)
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want.Role, got.Role)
	assert.Equal(t, want.User, got.User)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	assert.True(t, mr.Exists(DefaultKeyPrefix+"s1"))
	assert.Greater(t, mr.TTL(DefaultKeyPrefix+"s1"), time.Duration(0))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionRepository_SetRoleAndTouch(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, sampleSession("s1", now)))

	later := now.Add(time.Minute)
	require.NoError(t, repo.SetRole(ctx, "s1", rbac.RoleEmployee, later))
	require.NoError(t, repo.Touch(ctx, "s1", later.Add(time.Minute)))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, got.Role)
	assert.True(t, later.Add(time.Minute).Equal(got.LastSeenAt))

	assert.ErrorIs(t, repo.SetRole(ctx, "missing", rbac.RoleEmployee, later), session.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Touch(ctx, "missing", later), session.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleSession("s1", time.Now())))
	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), session.ErrSessionNotFound)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, sampleSession("idle", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleSession("fresh", now)))

	n, err := repo.DeleteExpired(ctx, now, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Get(ctx, "idle")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = repo.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSessionRepository_TTLExpiry(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleSession("s1", time.Now())))
	mr.FastForward(9 * time.Hour)

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

// TestPurpose: Validates that a role switch stored in Redis is seen by a second service sharing the store.
// Scope: Integration Test (miniredis)
// Security: Role isolation across processes
// Expected: The second service reads EMPLOYEE and denies settings right after the first one switches.
// Test Case ID: RDS-01
func TestSessionRepository_SharedAcrossServices(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	eval := authz.NewEvaluator(rbac.DefaultMatrix())
	opts := session.Options{DefaultRole: rbac.RoleSuperAdmin, AllowRoleSwitch: true, Lifetime: time.Hour}

	a := session.NewService(repo, eval, &audit.Recorder{}, opts)
	b := session.NewService(repo, eval, &audit.Recorder{}, opts)

	sess, err := a.Start(ctx, session.NewUser("Amara Okafor", ""))
	require.NoError(t, err)
	_, err = a.SetRole(ctx, sess.ID, rbac.RoleEmployee)
	require.NoError(t, err)

	seen, err := b.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, seen.Role)
	assert.False(t, b.Scope(seen).Can(rbac.FeatureSettings))
}

func TestSessionRepository_ConcurrentUpdates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, sampleSession("s1", now)))

	var wg sync.WaitGroup
	for i, role := range rbac.Roles() {
		wg.Add(2)
		go func(r rbac.Role, at time.Time) {
			defer wg.Done()
			assert.NoError(t, repo.SetRole(ctx, "s1", r, at))
		}(role, now.Add(time.Duration(i)*time.Second))
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Touch(ctx, "s1", now))
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Role.Valid())
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, Config{URL: "redis://" + mr.Addr(), RetryAttempts: 2, RetryInterval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx).Err())
	_ = client.Close()

	_, err = Connect(ctx, Config{URL: "::not a url"})
	assert.ErrorIs(t, err, ErrInvalidURL)
}
