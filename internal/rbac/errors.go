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
)

// Configuration errors
var (
	ErrIncompleteMatrix = errors.New("permission matrix is incomplete")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownFeature   = errors.New("unknown feature key")
	ErrUnknownLevel     = errors.New("unknown access level")
)

// MisuseError is raised by panic when the matrix is queried with a value
// outside the enumerated roles, features or levels. It is a programming
// error and is never returned.
type MisuseError struct {
	Op    string
	Value string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("rbac: %s called with %s", e.Op, e.Value)
}
