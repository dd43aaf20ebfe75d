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

import "maps"

// -----------------------------------------------------------------------------
// Default Grants
// The compiled-in matrix of the payroll console. Every role lists every
// feature; NewMatrix rejects the table otherwise.
// -----------------------------------------------------------------------------

// superAdminGrants defines the SUPER_ADMIN row.
var superAdminGrants = map[FeatureKey]AccessLevel{
	FeatureDashboardAdmin:    AccessFull,
	FeatureDashboardPayroll:  AccessFull,
	FeatureDashboardTeam:     AccessFull,
	FeatureDashboardEmployee: AccessFull,
	FeaturePayrollProcess:    AccessFull,
	FeaturePayrollTeam:       AccessFull,
	FeaturePayrollHistory:    AccessFull,
	FeaturePayProfiles:       AccessFull,
	FeaturePayrollGroups:     AccessFull,
	FeatureCurrencies:        AccessFull,
	FeatureFXRates:           AccessFull,
	FeatureMinimumWages:      AccessFull,
	FeatureLocations:         AccessFull,
	FeatureFlexibleShifts:    AccessFull,
	FeatureLoans:             AccessFull,
	FeatureReports:           AccessFull,
	FeatureSettings:          AccessFull,
}

// hrAdminGrants defines the HR_ADMIN row. It currently matches
// superAdminGrants cell for cell but is maintained separately.
var hrAdminGrants = map[FeatureKey]AccessLevel{
	FeatureDashboardAdmin:    AccessFull,
	FeatureDashboardPayroll:  AccessFull,
	FeatureDashboardTeam:     AccessFull,
	FeatureDashboardEmployee: AccessFull,
	FeaturePayrollProcess:    AccessFull,
	FeaturePayrollTeam:       AccessFull,
	FeaturePayrollHistory:    AccessFull,
	FeaturePayProfiles:       AccessFull,
	FeaturePayrollGroups:     AccessFull,
	FeatureCurrencies:        AccessFull,
	FeatureFXRates:           AccessFull,
	FeatureMinimumWages:      AccessFull,
	FeatureLocations:         AccessFull,
	FeatureFlexibleShifts:    AccessFull,
	FeatureLoans:             AccessFull,
	FeatureReports:           AccessFull,
	FeatureSettings:          AccessFull,
}

// payrollOfficerGrants defines the PAYROLL_OFFICER row.
var payrollOfficerGrants = map[FeatureKey]AccessLevel{
	FeatureDashboardAdmin:    AccessNone,
	FeatureDashboardPayroll:  AccessFull,
	FeatureDashboardTeam:     AccessNone,
	FeatureDashboardEmployee: AccessRead,
	FeaturePayrollProcess:    AccessFull,
	FeaturePayrollTeam:       AccessNone,
	FeaturePayrollHistory:    AccessFull,
	FeaturePayProfiles:       AccessFull,
	FeaturePayrollGroups:     AccessFull,
	FeatureCurrencies:        AccessRead,
	FeatureFXRates:           AccessFull,
	FeatureMinimumWages:      AccessRead,
	FeatureLocations:         AccessRead,
	FeatureFlexibleShifts:    AccessRead,
	FeatureLoans:             AccessFull,
	FeatureReports:           AccessFull,
	FeatureSettings:          AccessNone,
}

// managerGrants defines the MANAGER row.
// Loans is READ: the team dashboard lists loan requests but approval is not
// granted here.
var managerGrants = map[FeatureKey]AccessLevel{
	FeatureDashboardAdmin:    AccessNone,
	FeatureDashboardPayroll:  AccessNone,
	FeatureDashboardTeam:     AccessFull,
	FeatureDashboardEmployee: AccessRead,
	FeaturePayrollProcess:    AccessNone,
	FeaturePayrollTeam:       AccessRead,
	FeaturePayrollHistory:    AccessRead,
	FeaturePayProfiles:       AccessRead,
	FeaturePayrollGroups:     AccessNone,
	FeatureCurrencies:        AccessNone,
	FeatureFXRates:           AccessNone,
	FeatureMinimumWages:      AccessNone,
	FeatureLocations:         AccessRead,
	FeatureFlexibleShifts:    AccessRead,
	FeatureLoans:             AccessRead,
	FeatureReports:           AccessRead,
	FeatureSettings:          AccessNone,
}

// employeeGrants defines the EMPLOYEE row.
var employeeGrants = map[FeatureKey]AccessLevel{
	FeatureDashboardAdmin:    AccessNone,
	FeatureDashboardPayroll:  AccessNone,
	FeatureDashboardTeam:     AccessNone,
	FeatureDashboardEmployee: AccessFull,
	FeaturePayrollProcess:    AccessNone,
	FeaturePayrollTeam:       AccessNone,
	FeaturePayrollHistory:    AccessRead,
	FeaturePayProfiles:       AccessNone,
	FeaturePayrollGroups:     AccessNone,
	FeatureCurrencies:        AccessNone,
	FeatureFXRates:           AccessNone,
	FeatureMinimumWages:      AccessNone,
	FeatureLocations:         AccessNone,
	FeatureFlexibleShifts:    AccessNone,
	FeatureLoans:             AccessRead,
	FeatureReports:           AccessNone,
	FeatureSettings:          AccessNone,
}

// DefaultGrants returns a fresh copy of the compiled-in grants in literal form.
func DefaultGrants() Grants {
	rows := map[Role]map[FeatureKey]AccessLevel{
		RoleSuperAdmin:     superAdminGrants,
		RoleHRAdmin:        hrAdminGrants,
		RolePayrollOfficer: payrollOfficerGrants,
		RoleManager:        managerGrants,
		RoleEmployee:       employeeGrants,
	}
	g := make(Grants, len(rows))
	for role, row := range rows {
		g[role] = maps.Clone(row)
	}
	return g
}

var defaultMatrix = MustMatrix(DefaultGrants())

// DefaultMatrix returns the compiled-in matrix. It is validated at package
// initialization, so a gap in the table stops the process at startup.
func DefaultMatrix() *Matrix {
	return defaultMatrix
}
