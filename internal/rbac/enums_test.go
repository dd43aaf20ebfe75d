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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

func TestParseRole(t *testing.T) {
	for _, role := range rbac.Roles() {
		parsed, err := rbac.ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := rbac.ParseRole("manager")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = rbac.ParseRole("")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}

func TestParseFeature(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range rbac.Features() {
		name := f.String()
		assert.False(t, seen[name], "duplicate feature name %s", name)
		seen[name] = true

		parsed, err := rbac.ParseFeature(name)
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := rbac.ParseFeature("payroll")
	assert.ErrorIs(t, err, rbac.ErrUnknownFeature)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]rbac.AccessLevel{
		"NONE": rbac.AccessNone,
		"READ": rbac.AccessRead,
		"FULL": rbac.AccessFull,
	}
	for name, want := range tests {
		got, err := rbac.ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := rbac.ParseLevel("WRITE")
	assert.ErrorIs(t, err, rbac.ErrUnknownLevel)
}

func TestZeroValuesAreInvalid(t *testing.T) {
	var (
		role    rbac.Role
		feature rbac.FeatureKey
		level   rbac.AccessLevel
	)
	assert.False(t, role.Valid())
	assert.False(t, feature.Valid())
	assert.False(t, level.Valid())

	_, err := role.MarshalText()
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}

func TestJSONEncoding(t *testing.T) {
	payload := map[rbac.FeatureKey]rbac.AccessLevel{
		rbac.FeatureLoans:    rbac.AccessRead,
		rbac.FeatureSettings: rbac.AccessNone,
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loans":"READ","settings":"NONE"}`, string(data))

	var decoded map[rbac.FeatureKey]rbac.AccessLevel
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)

	var role rbac.Role
	require.NoError(t, json.Unmarshal([]byte(`"HR_ADMIN"`), &role))
	assert.Equal(t, rbac.RoleHRAdmin, role)
	assert.Error(t, json.Unmarshal([]byte(`"ROOT"`), &role))
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		actual    rbac.AccessLevel
		requested rbac.AccessLevel
		want      bool
	}{
		{rbac.AccessFull, rbac.AccessFull, true},
		{rbac.AccessRead, rbac.AccessFull, false},
		{rbac.AccessNone, rbac.AccessFull, false},
		{rbac.AccessFull, rbac.AccessRead, true},
		{rbac.AccessRead, rbac.AccessRead, true},
		{rbac.AccessNone, rbac.AccessRead, false},
		// Requesting NONE asks "any access at all".
		{rbac.AccessFull, rbac.AccessNone, true},
		{rbac.AccessRead, rbac.AccessNone, true},
		{rbac.AccessNone, rbac.AccessNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.actual.String()+"_for_"+tt.requested.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.Satisfies(tt.actual, tt.requested))
		})
	}

	assert.Panics(t, func() { rbac.Satisfies(rbac.AccessRead, rbac.AccessLevel(7)) })
	assert.Panics(t, func() { rbac.Satisfies(rbac.AccessLevel(0), rbac.AccessRead) })
}
