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

package authz

import "github.com/opentrusty/payrollgate/internal/rbac"

// Scope is the matrix row of a single role. It is computed once per role and
// shared; switching a session's role swaps the Scope rather than recomputing it.
type Scope struct {
	role    rbac.Role
	levels  map[rbac.FeatureKey]rbac.AccessLevel
	visible []rbac.FeatureKey
}

func newScope(m *rbac.Matrix, role rbac.Role) Scope {
	features := rbac.Features()
	s := Scope{
		role:   role,
		levels: make(map[rbac.FeatureKey]rbac.AccessLevel, len(features)),
	}
	for _, f := range features {
		level := m.Lookup(role, f)
		s.levels[f] = level
		if level != rbac.AccessNone {
			s.visible = append(s.visible, f)
		}
	}
	return s
}

// Role returns the role this scope is bound to.
func (s Scope) Role() rbac.Role {
	return s.role
}

// Level returns the grant on feature.
func (s Scope) Level(feature rbac.FeatureKey) rbac.AccessLevel {
	level, ok := s.levels[feature]
	if !ok {
		panic(&rbac.MisuseError{Op: "level", Value: feature.String()})
	}
	return level
}

// Can reports whether the role has at least READ on feature.
func (s Scope) Can(feature rbac.FeatureKey) bool {
	return s.CanLevel(feature, rbac.DefaultLevel)
}

// CanLevel reports whether the role's grant on feature satisfies requested.
func (s Scope) CanLevel(feature rbac.FeatureKey, requested rbac.AccessLevel) bool {
	return rbac.Satisfies(s.Level(feature), requested)
}

// Visible lists the features with any access, in declaration order.
func (s Scope) Visible() []rbac.FeatureKey {
	out := make([]rbac.FeatureKey, len(s.visible))
	copy(out, s.visible)
	return out
}

// Row returns a copy of the role's grants keyed by feature.
func (s Scope) Row() map[rbac.FeatureKey]rbac.AccessLevel {
	out := make(map[rbac.FeatureKey]rbac.AccessLevel, len(s.levels))
	for f, l := range s.levels {
		out[f] = l
	}
	return out
}
