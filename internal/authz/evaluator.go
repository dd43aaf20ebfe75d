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

import (
	"github.com/opentrusty/payrollgate/internal/rbac"
)

// Evaluator decides whether a role's grant meets a requested level.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	matrix *rbac.Matrix
	scopes map[rbac.Role]Scope
}

// NewEvaluator creates an evaluator over m and precomputes one Scope per role.
func NewEvaluator(m *rbac.Matrix) *Evaluator {
	if m == nil {
		panic(&rbac.MisuseError{Op: "new evaluator", Value: "nil matrix"})
	}

	scopes := make(map[rbac.Role]Scope, len(rbac.Roles()))
	for _, role := range rbac.Roles() {
		scopes[role] = newScope(m, role)
	}

	return &Evaluator{
		matrix: m,
		scopes: scopes,
	}
}

// Matrix returns the matrix the evaluator reads.
func (e *Evaluator) Matrix() *rbac.Matrix {
	return e.matrix
}

// Can reports whether role has at least rbac.DefaultLevel (READ) on feature.
func (e *Evaluator) Can(role rbac.Role, feature rbac.FeatureKey) bool {
	return e.CanLevel(role, feature, rbac.DefaultLevel)
}

// CanLevel reports whether role's grant on feature satisfies requested.
// Unknown roles, features or levels panic with *rbac.MisuseError.
func (e *Evaluator) CanLevel(role rbac.Role, feature rbac.FeatureKey, requested rbac.AccessLevel) bool {
	return rbac.Satisfies(e.matrix.Lookup(role, feature), requested)
}

// For returns the precomputed Scope of role.
func (e *Evaluator) For(role rbac.Role) Scope {
	s, ok := e.scopes[role]
	if !ok {
		panic(&rbac.MisuseError{Op: "scope", Value: role.String()})
	}
	return s
}
