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
	"strings"
	"time"
	"unicode"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// Domain errors
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrRoleSwitchDisabled  = errors.New("role switching is disabled")
	ErrDefaultRoleDisabled = errors.New("sessions require a role from a trusted source")
)

// User is the display identity shown in the console header.
// It does not change when the role changes.
type User struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// NewUser builds a User, deriving initials from name when none are given.
func NewUser(name, initials string) User {
	name = strings.TrimSpace(name)
	initials = strings.TrimSpace(initials)
	if initials == "" {
		initials = deriveInitials(name)
	}
	return User{Name: name, Initials: strings.ToUpper(initials)}
}

func deriveInitials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
				break
			}
		}
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// Session holds the single active role of a console user.
type Session struct {
	ID         string    `json:"id"`
	Role       rbac.Role `json:"role"`
	User       User      `json:"user"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpired checks if the session has passed its absolute lifetime
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsIdle checks if the session has been idle for too long
func (s *Session) IsIdle(now time.Time, idleTimeout time.Duration) bool {
	if idleTimeout <= 0 {
		return false
	}
	return now.Sub(s.LastSeenAt) > idleTimeout
}

// Repository defines the interface for session persistence.
// Role and last-seen updates are separate so that a refresh never
// overwrites a concurrent role switch.
type Repository interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Touch updates the last seen time
	Touch(ctx context.Context, sessionID string, seenAt time.Time) error

	// SetRole replaces the active role
	SetRole(ctx context.Context, sessionID string, role rbac.Role, seenAt time.Time) error

	// Delete deletes a session
	Delete(ctx context.Context, sessionID string) error

	// DeleteExpired deletes expired and idle sessions and reports how many
	DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error)
}
