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

package rbac_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// TestPurpose: Validates that the compiled-in matrix defines a level for every role and feature.
// Scope: Unit Test
// Security: Fail-closed configuration (no implicit grants or denials)
// Expected: 5 roles x 17 features = 85 valid cells.
// Test Case ID: MAT-01
func TestMatrix_Default_IsTotal(t *testing.T) {
	m := rbac.DefaultMatrix()

	require.Len(t, rbac.Roles(), 5)
	require.Len(t, rbac.Features(), 17)

	cells := 0
	for _, role := range rbac.Roles() {
		for _, feature := range rbac.Features() {
			level := m.Lookup(role, feature)
			assert.True(t, level.Valid(), "%s/%s has no level", role, feature)
			cells++
		}
	}
	assert.Equal(t, 85, cells)
}

// TestPurpose: Validates that a matrix with a single missing cell is rejected and the cell is named.
// Scope: Unit Test
// Security: Configuration error detection
// Expected: ErrIncompleteMatrix mentioning MANAGER/loans.
// Test Case ID: MAT-02
func TestMatrix_MissingCell_Rejected(t *testing.T) {
	g := rbac.DefaultGrants()
	delete(g[rbac.RoleManager], rbac.FeatureLoans)

	m, err := rbac.NewMatrix(g)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, rbac.ErrIncompleteMatrix)
	assert.Contains(t, err.Error(), "MANAGER/loans")
}

func TestMatrix_MissingRole_Rejected(t *testing.T) {
	g := rbac.DefaultGrants()
	delete(g, rbac.RoleEmployee)

	_, err := rbac.NewMatrix(g)
	require.ErrorIs(t, err, rbac.ErrIncompleteMatrix)
	for _, f := range rbac.Features() {
		assert.Contains(t, err.Error(), "EMPLOYEE/"+f.String())
	}
}

func TestMatrix_InvalidValues_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g rbac.Grants)
		target error
	}{
		{
			name:   "unset level",
			mutate: func(g rbac.Grants) { g[rbac.RoleManager][rbac.FeatureLoans] = rbac.AccessLevel(0) },
			target: rbac.ErrUnknownLevel,
		},
		{
			name:   "out of range level",
			mutate: func(g rbac.Grants) { g[rbac.RoleManager][rbac.FeatureLoans] = rbac.AccessLevel(9) },
			target: rbac.ErrUnknownLevel,
		},
		{
			name:   "unknown role",
			mutate: func(g rbac.Grants) { g[rbac.Role(42)] = map[rbac.FeatureKey]rbac.AccessLevel{} },
			target: rbac.ErrUnknownRole,
		},
		{
			name:   "unknown feature",
			mutate: func(g rbac.Grants) { g[rbac.RoleEmployee][rbac.FeatureKey(99)] = rbac.AccessRead },
			target: rbac.ErrUnknownFeature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := rbac.DefaultGrants()
			tt.mutate(g)

			_, err := rbac.NewMatrix(g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestMatrix_MustMatrix_PanicsOnGap(t *testing.T) {
	assert.Panics(t, func() {
		rbac.MustMatrix(rbac.Grants{rbac.RoleSuperAdmin: rbac.DefaultGrants()[rbac.RoleSuperAdmin]})
	})
}

// TestPurpose: Validates that queries outside the enumerations fail loudly instead of returning a level.
// Scope: Unit Test
// Security: Misuse must not default to allow or deny
// Expected: Lookup panics with *rbac.MisuseError.
// Test Case ID: MAT-03
func TestMatrix_Lookup_MisusePanics(t *testing.T) {
	m := rbac.DefaultMatrix()

	assertMisuse := func(fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected panic")
			_, ok := r.(*rbac.MisuseError)
			assert.True(t, ok, "panic value %T is not *rbac.MisuseError", r)
		}()
		fn()
	}

	assertMisuse(func() { m.Lookup(rbac.Role(0), rbac.FeatureLoans) })
	assertMisuse(func() { m.Lookup(rbac.RoleManager, rbac.FeatureKey(0)) })
	assertMisuse(func() { m.Lookup(rbac.RoleManager, rbac.FeatureKey(200)) })
}

func TestMatrix_Grants_ReturnsCopy(t *testing.T) {
	m := rbac.DefaultMatrix()

	g := m.Grants()
	g[rbac.RoleEmployee][rbac.FeatureSettings] = rbac.AccessFull

	assert.Equal(t, rbac.AccessNone, m.Lookup(rbac.RoleEmployee, rbac.FeatureSettings))

	rebuilt, err := rbac.NewMatrix(m.Grants())
	require.NoError(t, err)
	assert.True(t, m.Equal(rebuilt))
}

func TestMatrix_HRAdminRowIsExplicit(t *testing.T) {
	m := rbac.DefaultMatrix()

	// HR_ADMIN currently matches SUPER_ADMIN, but changing one row must not
	// move the other.
	g := rbac.DefaultGrants()
	g[rbac.RoleHRAdmin][rbac.FeatureSettings] = rbac.AccessRead
	changed, err := rbac.NewMatrix(g)
	require.NoError(t, err)

	assert.Equal(t, rbac.AccessRead, changed.Lookup(rbac.RoleHRAdmin, rbac.FeatureSettings))
	assert.Equal(t, rbac.AccessFull, changed.Lookup(rbac.RoleSuperAdmin, rbac.FeatureSettings))
	assert.Equal(t, rbac.AccessFull, m.Lookup(rbac.RoleHRAdmin, rbac.FeatureSettings))
}

// TestPurpose: Validates that callers cannot alter the compiled-in grants through DefaultGrants.
// Scope: Unit Test
// Security: Tampering with the default matrix at runtime
// Expected: Mutating one result leaves later results and DefaultMatrix unchanged.
// Test Case ID: MAT-04
func TestDefaultGrants_ReturnsCopy(t *testing.T) {
	g := rbac.DefaultGrants()
	g[rbac.RoleEmployee][rbac.FeatureSettings] = rbac.AccessFull
	delete(g, rbac.RoleManager)

	fresh := rbac.DefaultGrants()
	assert.Equal(t, rbac.AccessNone, fresh[rbac.RoleEmployee][rbac.FeatureSettings])
	assert.Contains(t, fresh, rbac.RoleManager)

	m, err := rbac.NewMatrix(fresh)
	require.NoError(t, err)
	assert.True(t, m.Equal(rbac.DefaultMatrix()))
	assert.Equal(t, rbac.AccessNone, rbac.DefaultMatrix().Lookup(rbac.RoleEmployee, rbac.FeatureSettings))
}
