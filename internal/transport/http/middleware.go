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

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/observability/logger"
	"github.com/opentrusty/payrollgate/internal/rbac"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.DebugContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(clientIP(r)),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(clientIP(r)),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RequireSession loads the session named by the cookie into the request context
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := h.getSessionFromCookie(r)
		if sessionID == "" {
			respondError(w, http.StatusUnauthorized, "no active session")
			return
		}

		sess, err := h.sessionService.Get(r.Context(), sessionID)
		if err != nil {
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		if err := h.sessionService.Touch(r.Context(), sessionID); err != nil {
			slog.ErrorContext(r.Context(), "failed to refresh session", logger.SessionID(sessionID), logger.Error(err))
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAccess lets the request through only when the session role holds
// at least level on feature. It must run after RequireSession.
func (h *Handler) RequireAccess(feature rbac.FeatureKey, level rbac.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil {
				respondError(w, http.StatusUnauthorized, "no active session")
				return
			}

			granted := h.sessionService.Scope(sess).CanLevel(feature, level)
			h.accessMetrics.Decision(r.Context(), sess.Role, feature, level, granted)
			if !granted {
				h.auditLogger.Log(r.Context(), audit.Event{
					Type:      audit.TypeAccessDenied,
					ActorID:   sess.ID,
					Resource:  feature.String(),
					IPAddress: clientIP(r),
					UserAgent: r.UserAgent(),
					Metadata: map[string]any{
						"role":  sess.Role.String(),
						"level": level.String(),
						"path":  r.URL.Path,
					},
				})
				respondError(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFMiddleware protects against Cross-Site Request Forgery for state-changing requests.
// The console sends a custom 'X-CSRF-Token' header, which a cross-site form cannot.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions || r.Method == http.MethodTrace {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("X-CSRF-Token") == "" {
			slog.WarnContext(r.Context(), "missing CSRF token header", "method", r.Method, "path", r.URL.Path)
			respondError(w, http.StatusForbidden, "CSRF protection: X-CSRF-Token header is required for state-changing operations")
			return
		}

		next.ServeHTTP(w, r)
	})
}
