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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// MatrixSource reads the permission matrix from rbac_access_grants.
// It never writes; grants are maintained outside this service.
type MatrixSource struct {
	db *DB
}

// NewMatrixSource creates a new matrix source
func NewMatrixSource(db *DB) *MatrixSource {
	return &MatrixSource{db: db}
}

// Load fetches every grant and validates the result.
func (s *MatrixSource) Load(ctx context.Context) (*rbac.Matrix, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT role, feature, level
		FROM rbac_access_grants
		ORDER BY role, feature
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query access grants: %w", err)
	}
	defer rows.Close()

	grants := make(rbac.Grants)
	var errs []error
	for rows.Next() {
		var roleName, featureName, levelName string
		if err := rows.Scan(&roleName, &featureName, &levelName); err != nil {
			return nil, fmt.Errorf("failed to scan access grant: %w", err)
		}
		cell, err := parseGrant(roleName, featureName, levelName)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if grants[cell.role] == nil {
			grants[cell.role] = make(map[rbac.FeatureKey]rbac.AccessLevel)
		}
		grants[cell.role][cell.feature] = cell.level
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read access grants: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return rbac.NewMatrix(grants)
}

type grantRow struct {
	role    rbac.Role
	feature rbac.FeatureKey
	level   rbac.AccessLevel
}

func parseGrant(roleName, featureName, levelName string) (grantRow, error) {
	role, err := rbac.ParseRole(roleName)
	if err != nil {
		return grantRow{}, err
	}
	feature, err := rbac.ParseFeature(featureName)
	if err != nil {
		return grantRow{}, fmt.Errorf("role %s: %w", roleName, err)
	}
	level, err := rbac.ParseLevel(levelName)
	if err != nil {
		return grantRow{}, fmt.Errorf("role %s, feature %s: %w", roleName, featureName, err)
	}
	return grantRow{role: role, feature: feature, level: level}, nil
}
