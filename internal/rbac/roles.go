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

import "fmt"

// Role identifies the organizational function of the console user.
// The zero value is not a role; an uninitialized Role never matches a grant.
type Role uint8

// -----------------------------------------------------------------------------
// Role Constants
// Wire names are the upper-case identifiers used by the console and by the
// matrix sources.
// -----------------------------------------------------------------------------

const (
	roleUnknown Role = iota

	// RoleSuperAdmin has every capability of the console.
	RoleSuperAdmin

	// RoleHRAdmin administers people and pay data. Its row is listed
	// explicitly even where it matches RoleSuperAdmin.
	RoleHRAdmin

	// RolePayrollOfficer processes payroll and maintains pay reference data.
	RolePayrollOfficer

	// RoleManager sees the team dashboard and team payroll.
	RoleManager

	// RoleEmployee uses self-service views only.
	RoleEmployee

	roleEnd
)

const roleCount = int(roleEnd) - 1

var roleNames = [...]string{
	RoleSuperAdmin:     "SUPER_ADMIN",
	RoleHRAdmin:        "HR_ADMIN",
	RolePayrollOfficer: "PAYROLL_OFFICER",
	RoleManager:        "MANAGER",
	RoleEmployee:       "EMPLOYEE",
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, 0, roleCount)
	for r := RoleSuperAdmin; r < roleEnd; r++ {
		out = append(out, r)
	}
	return out
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r > roleUnknown && r < roleEnd
}

func (r Role) index() int {
	return int(r) - 1
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return roleNames[r]
}

// ParseRole resolves a wire name such as "PAYROLL_OFFICER".
func ParseRole(s string) (Role, error) {
	for r := RoleSuperAdmin; r < roleEnd; r++ {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return roleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
