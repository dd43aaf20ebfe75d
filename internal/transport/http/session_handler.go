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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/opentrusty/payrollgate/internal/observability/logger"
	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
)

// StartSessionRequest carries the display identity for a new console session
type StartSessionRequest struct {
	Name     string `json:"name" validate:"required,max=120" example:"Amara Okafor"`
	Initials string `json:"initials" validate:"omitempty,max=3" example:"AO"`
}

// SwitchRoleRequest selects the role to simulate
type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required,rbac_role" example:"MANAGER"`
}

// SessionView is what the console reads to render itself
type SessionView struct {
	ID            string                                `json:"id"`
	Role          rbac.Role                             `json:"role"`
	User          session.User                          `json:"user"`
	Access        map[rbac.FeatureKey]rbac.AccessLevel `json:"access"`
	Visible       []rbac.FeatureKey                     `json:"visible"`
	CanSwitchRole bool                                  `json:"can_switch_role"`
	ExpiresAt     time.Time                             `json:"expires_at"`
}

func (h *Handler) sessionView(sess *session.Session) SessionView {
	scope := h.sessionService.Scope(sess)
	return SessionView{
		ID:            sess.ID,
		Role:          sess.Role,
		User:          sess.User,
		Access:        scope.Row(),
		Visible:       scope.Visible(),
		CanSwitchRole: h.sessionService.RoleSwitchAllowed(),
		ExpiresAt:     sess.ExpiresAt,
	}
}

// StartSession creates a console session. Behind a trusted proxy the role
// header set by that proxy chooses the role; otherwise the configured
// default applies, unless the deployment requires a trusted role.
// @Summary Start session
// @Tags Session
// @Accept json
// @Produce json
// @Param request body StartSessionRequest true "Display identity"
// @Success 201 {object} SessionView
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /session [post]
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user := session.NewUser(req.Name, req.Initials)

	role, trusted, err := h.trustedRole(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sess *session.Session
	if trusted {
		sess, err = h.sessionService.StartWithRole(r.Context(), user, role)
	} else {
		sess, err = h.sessionService.Start(r.Context(), user)
	}
	if err != nil {
		if errors.Is(err, session.ErrDefaultRoleDisabled) {
			respondError(w, http.StatusForbidden, "session role must be supplied by a trusted proxy")
			return
		}
		slog.ErrorContext(r.Context(), "failed to start session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	h.accessMetrics.SessionStarted(r.Context())
	h.setSessionCookie(w, sess.ID)
	respondJSON(w, http.StatusCreated, h.sessionView(sess))
}

// trustedRole reads the role header, honoured only from a trusted proxy.
func (h *Handler) trustedRole(r *http.Request) (rbac.Role, bool, error) {
	header := h.sessionConfig.TrustedRoleHeader
	if header == "" || !fromTrustedProxy(r) {
		return 0, false, nil
	}
	value := r.Header.Get(header)
	if value == "" {
		return 0, false, nil
	}
	role, err := rbac.ParseRole(value)
	if err != nil {
		return 0, false, err
	}
	return role, true, nil
}

// GetSession returns the current role, user and access row
// @Summary Current session
// @Tags Session
// @Produce json
// @Security CookieAuth
// @Success 200 {object} SessionView
// @Failure 401 {object} map[string]string
// @Router /session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	respondJSON(w, http.StatusOK, h.sessionView(sess))
}

// EndSession destroys the current session
// @Summary End session
// @Tags Session
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /session [delete]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	if err := h.sessionService.End(r.Context(), sess.ID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		slog.ErrorContext(r.Context(), "failed to end session", logger.SessionID(sess.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	h.accessMetrics.SessionEnded(r.Context())
	h.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "session ended"})
}

// SwitchRole replaces the active role of the current session
// @Summary Switch role
// @Description Role simulation. Disabled in production deployments.
// @Tags Session
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body SwitchRoleRequest true "Target role"
// @Success 200 {object} SessionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /session/role [put]
func (h *Handler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	if !h.sessionService.RoleSwitchAllowed() {
		respondError(w, http.StatusForbidden, "role switching is disabled")
		return
	}

	var req SwitchRoleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := GetSession(r.Context())
	updated, err := h.sessionService.SetRole(r.Context(), sess.ID, role)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRoleSwitchDisabled):
			respondError(w, http.StatusForbidden, "role switching is disabled")
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
		default:
			slog.ErrorContext(r.Context(), "failed to switch role", logger.SessionID(sess.ID), logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to switch role")
		}
		return
	}

	h.accessMetrics.RoleSwitched(r.Context(), role)
	slog.InfoContext(r.Context(), "role switched", logger.SessionID(sess.ID), logger.Role(role))
	respondJSON(w, http.StatusOK, h.sessionView(updated))
}
