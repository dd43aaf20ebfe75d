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

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/authz"
	"github.com/opentrusty/payrollgate/internal/rbac"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc    *Service
	repo   *MemoryRepository
	clock  *fakeClock
	events *audit.Recorder
}

func newFixture(t *testing.T, allowSwitch bool) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	repo := NewMemoryRepository()
	events := &audit.Recorder{}
	svc := NewService(repo, authz.NewEvaluator(rbac.DefaultMatrix()), events, Options{
		DefaultRole:     rbac.RoleSuperAdmin,
		AllowRoleSwitch: allowSwitch,
		Lifetime:        8 * time.Hour,
		IdleTimeout:     30 * time.Minute,
		Clock:           clock.Now,
	})
	return &fixture{svc: svc, repo: repo, clock: clock, events: events}
}

func TestNewUser_Initials(t *testing.T) {
	assert.Equal(t, User{Name: "Amara Okafor", Initials: "AO"}, NewUser("Amara Okafor", ""))
	assert.Equal(t, "JD", NewUser("  jane   doe smith ", "").Initials)
	assert.Equal(t, "XY", NewUser("Amara Okafor", "xy").Initials)
	assert.Equal(t, "", NewUser("", "").Initials)
}

func TestService_Start_DefaultRole(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, NewUser("Amara Okafor", ""))
	require.NoError(t, err)

	assert.Equal(t, rbac.RoleSuperAdmin, sess.Role)
	assert.Equal(t, "AO", sess.User.Initials)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), sess.ExpiresAt)

	id, err := uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Len(t, f.events.OfType(audit.TypeSessionStarted), 1)
}

func TestService_StartWithRole(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sess, err := f.svc.StartWithRole(ctx, NewUser("Lee Chen", ""), rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, sess.Role)

	_, err = f.svc.StartWithRole(ctx, NewUser("Lee Chen", ""), rbac.Role(0))
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}

// TestPurpose: Validates that a role switch is visible to the very next evaluation and the previous role's grants vanish.
// Scope: Unit Test
// Security: Role isolation after switch
// Expected: After SetRole(EMPLOYEE), settings is denied and dashboard.employee is FULL.
// Test Case ID: SES-01
func TestService_SetRole_IsolatesPreviousRole(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, NewUser("Amara Okafor", ""))
	require.NoError(t, err)
	require.True(t, f.svc.Scope(sess).CanLevel(rbac.FeatureSettings, rbac.AccessFull))

	switched, err := f.svc.SetRole(ctx, sess.ID, rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, switched.Role)
	assert.Equal(t, sess.User, switched.User)

	again, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	scope := f.svc.Scope(again)
	assert.Equal(t, rbac.RoleEmployee, scope.Role())
	assert.False(t, scope.Can(rbac.FeatureSettings))
	assert.True(t, scope.CanLevel(rbac.FeatureDashboardEmployee, rbac.AccessFull))

	events := f.events.OfType(audit.TypeRoleSwitched)
	require.Len(t, events, 1)
	assert.Equal(t, "SUPER_ADMIN", events[0].Metadata["from"])
	assert.Equal(t, "EMPLOYEE", events[0].Metadata["to"])
}

func TestService_SetRole_AnyToAny(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, NewUser("Amara Okafor", ""))
	require.NoError(t, err)

	for _, from := range rbac.Roles() {
		for _, to := range rbac.Roles() {
			_, err := f.svc.SetRole(ctx, sess.ID, from)
			require.NoError(t, err)
			got, err := f.svc.SetRole(ctx, sess.ID, to)
			require.NoError(t, err)
			assert.Equal(t, to, got.Role)
		}
	}
}

// TestPurpose: Validates that role simulation can be switched off.
// Scope: Unit Test
// Security: Privilege escalation via role switch (CWE-269)
// Expected: SetRole returns ErrRoleSwitchDisabled and the role is unchanged.
// Test Case ID: SES-02
func TestService_SetRole_Disabled(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	sess, err := f.svc.StartWithRole(ctx, NewUser("Lee Chen", ""), rbac.RoleEmployee)
	require.NoError(t, err)

	_, err = f.svc.SetRole(ctx, sess.ID, rbac.RoleSuperAdmin)
	assert.ErrorIs(t, err, ErrRoleSwitchDisabled)

	got, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, got.Role)
	assert.False(t, f.svc.RoleSwitchAllowed())
}

func TestService_SetRole_Errors(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.SetRole(ctx, "missing", rbac.RoleManager)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess, err := f.svc.Start(ctx, NewUser("Amara Okafor", ""))
	require.NoError(t, err)
	_, err = f.svc.SetRole(ctx, sess.ID, rbac.Role(99))
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}

func TestService_Get_ExpiryAndIdle(t *testing.T) {
	ctx := context.Background()

	t.Run("idle", func(t *testing.T) {
		f := newFixture(t, true)
		sess, err := f.svc.Start(ctx, NewUser("A B", ""))
		require.NoError(t, err)

		f.clock.Advance(20 * time.Minute)
		require.NoError(t, f.svc.Touch(ctx, sess.ID))
		f.clock.Advance(20 * time.Minute)
		_, err = f.svc.Get(ctx, sess.ID)
		require.NoError(t, err)

		f.clock.Advance(31 * time.Minute)
		_, err = f.svc.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrSessionExpired)

		_, err = f.repo.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("lifetime", func(t *testing.T) {
		f := newFixture(t, true)
		sess, err := f.svc.Start(ctx, NewUser("A B", ""))
		require.NoError(t, err)

		for i := 0; i < 17; i++ {
			f.clock.Advance(29 * time.Minute)
			require.NoError(t, f.svc.Touch(ctx, sess.ID))
		}
		_, err = f.svc.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestService_End(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, NewUser("A B", ""))
	require.NoError(t, err)

	require.NoError(t, f.svc.End(ctx, sess.ID))
	_, err = f.svc.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.ErrorIs(t, f.svc.End(ctx, sess.ID), ErrSessionNotFound)
	assert.Len(t, f.events.OfType(audit.TypeSessionEnded), 1)
}

func TestService_CleanupExpired(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	stale, err := f.svc.Start(ctx, NewUser("A B", ""))
	require.NoError(t, err)
	f.clock.Advance(25 * time.Minute)
	fresh, err := f.svc.Start(ctx, NewUser("C D", ""))
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	require.NoError(t, f.svc.CleanupExpired(ctx))

	_, err = f.repo.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestService_Scope_NilSessionPanics(t *testing.T) {
	f := newFixture(t, true)
	assert.Panics(t, func() { f.svc.Scope(nil) })
}

func TestNewService_InvalidDefaultRolePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewService(NewMemoryRepository(), authz.NewEvaluator(rbac.DefaultMatrix()), &audit.Recorder{}, Options{})
	})
}

func TestMemoryRepository_ConcurrentRoleSwitch(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, NewUser("A B", ""))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, role := range rbac.Roles() {
		wg.Add(2)
		go func(r rbac.Role) {
			defer wg.Done()
			_, _ = f.svc.SetRole(ctx, sess.ID, r)
		}(role)
		go func() {
			defer wg.Done()
			_ = f.svc.Touch(ctx, sess.ID)
		}()
	}
	wg.Wait()

	got, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Role.Valid())
}

// TestPurpose: Validates that a deployment requiring a trusted role never mints the default role.
// Scope: Unit Test
// Security: Privilege assignment without a trusted source (CWE-269)
// Expected: Start fails with ErrDefaultRoleDisabled and stores nothing; StartWithRole still works.
// Test Case ID: SES-03
func TestService_Start_RequireTrustedRole(t *testing.T) {
	repo := NewMemoryRepository()
	events := &audit.Recorder{}
	svc := NewService(repo, authz.NewEvaluator(rbac.DefaultMatrix()), events, Options{
		DefaultRole:        rbac.RoleSuperAdmin,
		RequireTrustedRole: true,
	})
	ctx := context.Background()

	sess, err := svc.Start(ctx, NewUser("Amara Okafor", ""))
	require.ErrorIs(t, err, ErrDefaultRoleDisabled)
	assert.Nil(t, sess)
	assert.Empty(t, events.OfType(audit.TypeSessionStarted))

	n, err := repo.DeleteExpired(ctx, time.Now().Add(48*time.Hour), 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	sess, err = svc.StartWithRole(ctx, NewUser("Amara Okafor", ""), rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, sess.Role)
}
