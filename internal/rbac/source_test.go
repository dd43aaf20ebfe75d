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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

func TestStaticSource(t *testing.T) {
	m, err := rbac.StaticSource{}.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, rbac.DefaultMatrix(), m)
}

func TestYAML_RoundTrip(t *testing.T) {
	data, err := rbac.MarshalYAML(rbac.DefaultMatrix())
	require.NoError(t, err)
	assert.Contains(t, string(data), "PAYROLL_OFFICER:")
	assert.Contains(t, string(data), "payroll.team: NONE")

	m, err := rbac.ParseYAML(data)
	require.NoError(t, err)
	assert.True(t, rbac.DefaultMatrix().Equal(m))
}

func TestYAMLSource_LoadFile(t *testing.T) {
	data, err := rbac.MarshalYAML(rbac.DefaultMatrix())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m, err := rbac.YAMLSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rbac.AccessRead, m.Lookup(rbac.RoleEmployee, rbac.FeatureLoans))

	_, err = rbac.YAMLSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Load(context.Background())
	assert.Error(t, err)
}

func TestParseYAML_Rejects(t *testing.T) {
	valid, err := rbac.MarshalYAML(rbac.DefaultMatrix())
	require.NoError(t, err)

	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{
			name:   "empty document",
			doc:    "roles: {}\n",
			target: rbac.ErrIncompleteMatrix,
		},
		{
			name:   "unknown role",
			doc:    string(valid) + "  AUDITOR:\n    loans: READ\n",
			target: rbac.ErrUnknownRole,
		},
		{
			name:   "unknown level",
			doc:    strings.Replace(string(valid), "settings: NONE", "settings: WRITE", 1),
			target: rbac.ErrUnknownLevel,
		},
		{
			name:   "unknown feature",
			doc:    strings.Replace(string(valid), "settings:", "preferences:", 1),
			target: rbac.ErrUnknownFeature,
		},
		{
			name:   "missing cell",
			doc:    strings.Replace(string(valid), "    loans: READ\n", "", 1),
			target: rbac.ErrIncompleteMatrix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rbac.ParseYAML([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParseYAML_Malformed(t *testing.T) {
	_, err := rbac.ParseYAML([]byte("roles: [unterminated"))
	assert.Error(t, err)
}
