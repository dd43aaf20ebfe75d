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
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// AccessDecision answers one can(feature, level) question
type AccessDecision struct {
	Feature rbac.FeatureKey  `json:"feature"`
	Level   rbac.AccessLevel `json:"level"`
	Granted bool             `json:"granted"`
}

// MatrixView exposes the loaded matrix
type MatrixView struct {
	Source string      `json:"source"`
	Roles  rbac.Grants `json:"roles"`
}

// CheckAccess evaluates the current role against a feature
// @Summary Check access
// @Description Omitting level asks for READ.
// @Tags RBAC
// @Produce json
// @Security CookieAuth
// @Param feature path string true "Feature key" example(loans)
// @Param level query string false "NONE, READ or FULL"
// @Success 200 {object} AccessDecision
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /access/{feature} [get]
func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	feature, err := rbac.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	level := rbac.DefaultLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err = rbac.ParseLevel(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess := GetSession(r.Context())
	granted := h.sessionService.Scope(sess).CanLevel(feature, level)
	h.accessMetrics.Decision(r.Context(), sess.Role, feature, level, granted)

	respondJSON(w, http.StatusOK, AccessDecision{Feature: feature, Level: level, Granted: granted})
}

// GetMatrix returns the full permission matrix
// @Summary Permission matrix
// @Description Requires READ on settings.
// @Tags RBAC
// @Produce json
// @Security CookieAuth
// @Success 200 {object} MatrixView
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /matrix [get]
func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MatrixView{
		Source: h.matrixSource,
		Roles:  h.evaluator.Matrix().Grants(),
	})
}
