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

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// Metric names
const (
	AccessDecisions = "payrollgate.access.decisions"
	RoleSwitches    = "payrollgate.session.role_switches"
	ActiveSessions  = "payrollgate.session.active"
)

// AccessMetrics records authorization activity.
type AccessMetrics struct {
	decisions metric.Int64Counter
	switches  metric.Int64Counter
	sessions  metric.Int64UpDownCounter
}

// NewAccessMetrics registers the access instruments on m.
func NewAccessMetrics(m *Meter) (*AccessMetrics, error) {
	decisions, err := m.CreateCounter(AccessDecisions, "Access decisions by role, feature, level and outcome")
	if err != nil {
		return nil, err
	}
	switches, err := m.CreateCounter(RoleSwitches, "Role switches by target role")
	if err != nil {
		return nil, err
	}
	sessions, err := m.CreateUpDownCounter(ActiveSessions, "Sessions started minus sessions ended")
	if err != nil {
		return nil, err
	}
	return &AccessMetrics{decisions: decisions, switches: switches, sessions: sessions}, nil
}

// Decision counts one access check.
func (a *AccessMetrics) Decision(ctx context.Context, role rbac.Role, feature rbac.FeatureKey, level rbac.AccessLevel, granted bool) {
	if a == nil {
		return
	}
	a.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role.String()),
		attribute.String("feature", feature.String()),
		attribute.String("level", level.String()),
		attribute.Bool("granted", granted),
	))
}

// RoleSwitched counts a role switch to role.
func (a *AccessMetrics) RoleSwitched(ctx context.Context, role rbac.Role) {
	if a == nil {
		return
	}
	a.switches.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role.String())))
}

// SessionStarted increments the active session gauge.
func (a *AccessMetrics) SessionStarted(ctx context.Context) {
	if a == nil {
		return
	}
	a.sessions.Add(ctx, 1)
}

// SessionEnded decrements the active session gauge.
func (a *AccessMetrics) SessionEnded(ctx context.Context) {
	if a == nil {
		return
	}
	a.sessions.Add(ctx, -1)
}
