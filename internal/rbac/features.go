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

// FeatureKey identifies a protected view or capability of the payroll console.
// Adding a key means adding a cell for every role in every matrix source.
type FeatureKey uint8

const (
	featureUnknown FeatureKey = iota

	// Dashboards
	FeatureDashboardAdmin
	FeatureDashboardPayroll
	FeatureDashboardTeam
	FeatureDashboardEmployee

	// Payroll runs
	FeaturePayrollProcess
	FeaturePayrollTeam
	FeaturePayrollHistory

	// Pay reference data
	FeaturePayProfiles
	FeaturePayrollGroups
	FeatureCurrencies
	FeatureFXRates
	FeatureMinimumWages
	FeatureLocations
	FeatureFlexibleShifts

	// Other modules
	FeatureLoans
	FeatureReports
	FeatureSettings

	featureEnd
)

const featureCount = int(featureEnd) - 1

var featureNames = [...]string{
	FeatureDashboardAdmin:    "dashboard.admin",
	FeatureDashboardPayroll:  "dashboard.payroll",
	FeatureDashboardTeam:     "dashboard.team",
	FeatureDashboardEmployee: "dashboard.employee",
	FeaturePayrollProcess:    "payroll.process",
	FeaturePayrollTeam:       "payroll.team",
	FeaturePayrollHistory:    "payroll.history",
	FeaturePayProfiles:       "pay_profiles",
	FeaturePayrollGroups:     "payroll_groups",
	FeatureCurrencies:        "currencies",
	FeatureFXRates:           "fx_rates",
	FeatureMinimumWages:      "minimum_wages",
	FeatureLocations:         "locations",
	FeatureFlexibleShifts:    "flexible_shifts",
	FeatureLoans:             "loans",
	FeatureReports:           "reports",
	FeatureSettings:          "settings",
}

// Features returns every feature key in declaration order.
func Features() []FeatureKey {
	out := make([]FeatureKey, 0, featureCount)
	for f := FeatureDashboardAdmin; f < featureEnd; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is one of the enumerated feature keys.
func (f FeatureKey) Valid() bool {
	return f > featureUnknown && f < featureEnd
}

func (f FeatureKey) index() int {
	return int(f) - 1
}

func (f FeatureKey) String() string {
	if !f.Valid() {
		return fmt.Sprintf("FeatureKey(%d)", uint8(f))
	}
	return featureNames[f]
}

// ParseFeature resolves a wire name such as "payroll.process".
func ParseFeature(s string) (FeatureKey, error) {
	for f := FeatureDashboardAdmin; f < featureEnd; f++ {
		if featureNames[f] == s {
			return f, nil
		}
	}
	return featureUnknown, fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f FeatureKey) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFeature, uint8(f))
	}
	return []byte(featureNames[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FeatureKey) UnmarshalText(text []byte) error {
	parsed, err := ParseFeature(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
