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

package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Grants is the literal form of a permission matrix.
type Grants map[Role]map[FeatureKey]AccessLevel

// Matrix is a total, immutable Role x FeatureKey -> AccessLevel table.
// It is safe for concurrent use.
type Matrix struct {
	cells [roleCount][featureCount]AccessLevel
}

// NewMatrix validates g and copies it into a Matrix.
// Every (role, feature) pair must be present; a missing cell is a
// configuration error, never an implicit NONE.
func NewMatrix(g Grants) (*Matrix, error) {
	var (
		m       Matrix
		errs    []error
		missing []string
	)

	for role, row := range g {
		if !role.Valid() {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownRole, role))
			continue
		}
		for feature, level := range row {
			if !feature.Valid() {
				errs = append(errs, fmt.Errorf("%w: %s (role %s)", ErrUnknownFeature, feature, role))
				continue
			}
			if !level.Valid() {
				errs = append(errs, fmt.Errorf("%w: %s (role %s, feature %s)", ErrUnknownLevel, level, role, feature))
				continue
			}
			m.cells[role.index()][feature.index()] = level
		}
	}

	for _, role := range Roles() {
		for _, feature := range Features() {
			if m.cells[role.index()][feature.index()] == levelUnset {
				missing = append(missing, role.String()+"/"+feature.String())
			}
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: missing %s", ErrIncompleteMatrix, strings.Join(missing, ", ")))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &m, nil
}

// MustMatrix is NewMatrix for compiled-in tables; it panics on error.
func MustMatrix(g Grants) *Matrix {
	m, err := NewMatrix(g)
	if err != nil {
		panic(fmt.Sprintf("rbac: invalid permission matrix: %v", err))
	}
	return m
}

// Lookup returns the level granted to role on feature.
// It panics with *MisuseError for values outside the enumerations.
func (m *Matrix) Lookup(role Role, feature FeatureKey) AccessLevel {
	if !role.Valid() {
		panic(&MisuseError{Op: "lookup", Value: role.String()})
	}
	if !feature.Valid() {
		panic(&MisuseError{Op: "lookup", Value: feature.String()})
	}
	return m.cells[role.index()][feature.index()]
}

// Grants returns a copy of the matrix in literal form.
func (m *Matrix) Grants() Grants {
	g := make(Grants, roleCount)
	for _, role := range Roles() {
		row := make(map[FeatureKey]AccessLevel, featureCount)
		for _, feature := range Features() {
			row[feature] = m.cells[role.index()][feature.index()]
		}
		g[role] = row
	}
	return g
}

// Equal reports whether both matrices grant the same level in every cell.
func (m *Matrix) Equal(other *Matrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.cells == other.cells
}
