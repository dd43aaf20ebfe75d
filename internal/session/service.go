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

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/authz"
	"github.com/opentrusty/payrollgate/internal/observability/logger"
	"github.com/opentrusty/payrollgate/internal/rbac"
)

// Options configures session policy.
type Options struct {
	// DefaultRole is assigned by Start. Production deployments set the role
	// from a trusted source with StartWithRole instead.
	DefaultRole rbac.Role

	// RequireTrustedRole disables Start; every session must then be
	// created through StartWithRole.
	RequireTrustedRole bool

	// AllowRoleSwitch enables SetRole for role simulation.
	AllowRoleSwitch bool

	Lifetime    time.Duration
	IdleTimeout time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service manages console sessions and binds them to the evaluator.
type Service struct {
	repo        Repository
	evaluator   *authz.Evaluator
	auditLogger audit.Logger
	opts        Options
}

// NewService creates a new session service
func NewService(repo Repository, evaluator *authz.Evaluator, auditLogger audit.Logger, opts Options) *Service {
	if !opts.DefaultRole.Valid() {
		panic(&rbac.MisuseError{Op: "session defaults", Value: opts.DefaultRole.String()})
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = 24 * time.Hour
	}
	return &Service{
		repo:        repo,
		evaluator:   evaluator,
		auditLogger: auditLogger,
		opts:        opts,
	}
}

// RoleSwitchAllowed reports whether SetRole is enabled.
func (s *Service) RoleSwitchAllowed() bool {
	return s.opts.AllowRoleSwitch
}

// Start creates a session with the configured default role.
// It fails with ErrDefaultRoleDisabled when a trusted role is required.
func (s *Service) Start(ctx context.Context, user User) (*Session, error) {
	if s.opts.RequireTrustedRole {
		return nil, ErrDefaultRoleDisabled
	}
	return s.StartWithRole(ctx, user, s.opts.DefaultRole)
}

// StartWithRole creates a session whose role was established by the caller.
func (s *Service) StartWithRole(ctx context.Context, user User, role rbac.Role) (*Session, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", rbac.ErrUnknownRole, role)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.opts.Clock()
	sess := &Session{
		ID:         id.String(),
		Role:       role,
		User:       user,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.opts.Lifetime),
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSessionStarted,
		ActorID:  sess.ID,
		Resource: "session",
		Metadata: map[string]any{"role": role.String(), "user": user.Name},
	})

	return sess, nil
}

// Get returns a live session. Expired or idle sessions are removed and
// reported as ErrSessionExpired.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.opts.Clock()
	if sess.IsExpired(now) || sess.IsIdle(now, s.opts.IdleTimeout) {
		if err := s.repo.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			slog.WarnContext(ctx, "failed to delete expired session", logger.SessionID(sessionID), logger.Error(err))
		}
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Touch records activity on a session
func (s *Service) Touch(ctx context.Context, sessionID string) error {
	return s.repo.Touch(ctx, sessionID, s.opts.Clock())
}

// SetRole atomically replaces the active role. Any role may switch to any
// other role; the call is refused only when switching is disabled.
func (s *Service) SetRole(ctx context.Context, sessionID string, role rbac.Role) (*Session, error) {
	if !s.opts.AllowRoleSwitch {
		return nil, ErrRoleSwitchDisabled
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", rbac.ErrUnknownRole, role)
	}

	prev, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetRole(ctx, sessionID, role, s.opts.Clock()); err != nil {
		return nil, fmt.Errorf("failed to switch role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleSwitched,
		ActorID:  sessionID,
		Resource: "session",
		Metadata: map[string]any{"from": prev.Role.String(), "to": role.String()},
	})

	return s.Get(ctx, sessionID)
}

// Scope binds the evaluator to the session's current role.
func (s *Service) Scope(sess *Session) authz.Scope {
	if sess == nil {
		panic(&rbac.MisuseError{Op: "scope", Value: "nil session"})
	}
	return s.evaluator.For(sess.Role)
}

// End destroys a session
func (s *Service) End(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSessionEnded,
		ActorID:  sessionID,
		Resource: "session",
	})
	return nil
}

// CleanupExpired removes expired and idle sessions
func (s *Service) CleanupExpired(ctx context.Context) error {
	n, err := s.repo.DeleteExpired(ctx, s.opts.Clock(), s.opts.IdleTimeout)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired sessions removed", logger.Component("session"), slog.Int("count", n))
	}
	return nil
}
