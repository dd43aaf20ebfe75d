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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source yields a validated matrix. Implementations only read; the table is
// maintained outside this service.
type Source interface {
	Load(ctx context.Context) (*Matrix, error)
}

// Source kinds accepted by configuration.
const (
	SourceStatic   = "static"
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// StaticSource serves the compiled-in matrix.
type StaticSource struct{}

// Load returns DefaultMatrix.
func (StaticSource) Load(ctx context.Context) (*Matrix, error) {
	return DefaultMatrix(), nil
}

// YAMLSource reads a matrix document from a file:
//
//	roles:
//	  SUPER_ADMIN:
//	    dashboard.admin: FULL
//	    ...
type YAMLSource struct {
	Path string
}

// Load reads and validates the file.
func (s YAMLSource) Load(ctx context.Context) (*Matrix, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix file: %w", err)
	}
	m, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("matrix file %s: %w", s.Path, err)
	}
	return m, nil
}

type yamlDocument struct {
	Roles map[string]map[string]string `yaml:"roles"`
}

// ParseYAML decodes a matrix document and validates it.
func ParseYAML(data []byte) (*Matrix, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode matrix: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", ErrIncompleteMatrix)
	}

	grants := make(Grants, len(doc.Roles))
	var errs []error
	for roleName, row := range doc.Roles {
		role, err := ParseRole(roleName)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		levels := make(map[FeatureKey]AccessLevel, len(row))
		for featureName, levelName := range row {
			feature, err := ParseFeature(featureName)
			if err != nil {
				errs = append(errs, fmt.Errorf("role %s: %w", roleName, err))
				continue
			}
			level, err := ParseLevel(levelName)
			if err != nil {
				errs = append(errs, fmt.Errorf("role %s, feature %s: %w", roleName, featureName, err))
				continue
			}
			levels[feature] = level
		}
		grants[role] = levels
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return NewMatrix(grants)
}

// MarshalYAML renders the matrix in the document form ParseYAML accepts.
func MarshalYAML(m *Matrix) ([]byte, error) {
	doc := yamlDocument{Roles: make(map[string]map[string]string, roleCount)}
	for role, row := range m.Grants() {
		out := make(map[string]string, len(row))
		for feature, level := range row {
			out[feature.String()] = level.String()
		}
		doc.Roles[role.String()] = out
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode matrix: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode matrix: %w", err)
	}
	return buf.Bytes(), nil
}
