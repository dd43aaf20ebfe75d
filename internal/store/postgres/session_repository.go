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
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
)

// SessionRepository implements session.Repository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO console_sessions (id, role, user_name, user_initials, created_at, last_seen_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		sess.ID, sess.Role.String(), sess.User.Name, sess.User.Initials,
		sess.CreatedAt, sess.LastSeenAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	var sess session.Session
	var roleName string

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, role, user_name, user_initials, created_at, last_seen_at, expires_at
		FROM console_sessions
		WHERE id = $1
	`, sessionID).Scan(
		&sess.ID, &roleName, &sess.User.Name, &sess.User.Initials,
		&sess.CreatedAt, &sess.LastSeenAt, &sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Role, err = rbac.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// Touch updates session last seen time
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, seenAt time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE console_sessions SET last_seen_at = $2
		WHERE id = $1
	`, sessionID, seenAt)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// SetRole replaces the active role in a single statement
func (r *SessionRepository) SetRole(ctx context.Context, sessionID string, role rbac.Role, seenAt time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE console_sessions SET role = $2, last_seen_at = $3
		WHERE id = $1
	`, sessionID, role.String(), seenAt)
	if err != nil {
		return fmt.Errorf("failed to switch session role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM console_sessions WHERE id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired deletes all expired and idle sessions
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	idleCutoff := now.Add(-idleTimeout)
	if idleTimeout <= 0 {
		idleCutoff = time.Time{}
	}

	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM console_sessions WHERE expires_at < $1 OR last_seen_at < $2
	`, now, idleCutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(result.RowsAffected()), nil
}
