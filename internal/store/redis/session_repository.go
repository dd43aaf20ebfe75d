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

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
)

// DefaultKeyPrefix namespaces session hashes.
const DefaultKeyPrefix = "payrollgate:session:"

const (
	fieldRole       = "role"
	fieldName       = "name"
	fieldInitials   = "initials"
	fieldCreatedAt  = "created_at"
	fieldLastSeenAt = "last_seen_at"
	fieldExpiresAt  = "expires_at"
)

// updateIfExists writes fields only when the session hash is still present.
var updateIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

// SessionRepository implements session.Repository on Redis hashes.
// Each session expires on its own at ExpiresAt.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository creates a new Redis session repository
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	key := r.key(sess.ID)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			fieldRole, sess.Role.String(),
			fieldName, sess.User.Name,
			fieldInitials, sess.User.Initials,
			fieldCreatedAt, formatTime(sess.CreatedAt),
			fieldLastSeenAt, formatTime(sess.LastSeenAt),
			fieldExpiresAt, formatTime(sess.ExpiresAt),
		)
		p.PExpireAt(ctx, key, sess.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, session.ErrSessionNotFound
	}
	return decode(sessionID, fields)
}

// Touch updates the last seen time
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, seenAt time.Time) error {
	return r.update(ctx, sessionID, fieldLastSeenAt, formatTime(seenAt))
}

// SetRole replaces the active role
func (r *SessionRepository) SetRole(ctx context.Context, sessionID string, role rbac.Role, seenAt time.Time) error {
	return r.update(ctx, sessionID, fieldRole, role.String(), fieldLastSeenAt, formatTime(seenAt))
}

func (r *SessionRepository) update(ctx context.Context, sessionID string, args ...any) error {
	n, err := updateIfExists.Run(ctx, r.client, []string{r.key(sessionID)}, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n < 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	n, err := r.client.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes idle sessions. Expired ones are usually gone
// already through the key TTL.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time, idleTimeout time.Duration) (int, error) {
	deleted := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		vals, err := r.client.HMGet(ctx, key, fieldLastSeenAt, fieldExpiresAt).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to read session %s: %w", key, err)
		}
		lastSeen, err1 := parseTime(vals[0])
		expires, err2 := parseTime(vals[1])
		if err := errors.Join(err1, err2); err != nil {
			continue
		}
		sess := session.Session{LastSeenAt: lastSeen, ExpiresAt: expires}
		if !sess.IsExpired(now) && !sess.IsIdle(now, idleTimeout) {
			continue
		}
		n, err := r.client.Del(ctx, key).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete session %s: %w", key, err)
		}
		deleted += int(n)
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return deleted, nil
}

func decode(sessionID string, fields map[string]string) (*session.Session, error) {
	role, err := rbac.ParseRole(fields[fieldRole])
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("session %s: bad %s: %w", sessionID, fieldCreatedAt, err)
	}
	lastSeenAt, err := time.Parse(time.RFC3339Nano, fields[fieldLastSeenAt])
	if err != nil {
		return nil, fmt.Errorf("session %s: bad %s: %w", sessionID, fieldLastSeenAt, err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, fields[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("session %s: bad %s: %w", sessionID, fieldExpiresAt, err)
	}
	return &session.Session{
		ID:         sessionID,
		Role:       role,
		User:       session.User{Name: fields[fieldName], Initials: fields[fieldInitials]},
		CreatedAt:  createdAt,
		LastSeenAt: lastSeenAt,
		ExpiresAt:  expiresAt,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	return time.Parse(time.RFC3339Nano, s)
}
