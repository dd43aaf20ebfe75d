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
	"sync"
	"time"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// MemoryRepository keeps sessions in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

func (r *MemoryRepository) Create(ctx context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (r *MemoryRepository) Touch(ctx context.Context, sessionID string, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastSeenAt = seenAt
	r.sessions[sessionID] = sess
	return nil
}

func (r *MemoryRepository) SetRole(ctx context.Context, sessionID string, role rbac.Role, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Role = role
	sess.LastSeenAt = seenAt
	r.sessions[sessionID] = sess
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sess := range r.sessions {
		if sess.IsExpired(now) || sess.IsIdle(now, idleTimeout) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
