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

// @title PayrollGate API
// @version 1.0.0
// @description Role-based access control for the payroll administration console

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name payrollgate_session

package http

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/authz"
	"github.com/opentrusty/payrollgate/internal/observability/logger"
	"github.com/opentrusty/payrollgate/internal/observability/metrics"
	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	sessionService *session.Service
	evaluator      *authz.Evaluator
	matrixSource   string
	auditLogger    audit.Logger
	accessMetrics  *metrics.AccessMetrics
	validate       *validator.Validate
	sessionConfig  SessionConfig
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	MaxAge         time.Duration

	// TrustedRoleHeader names the header a trusted proxy uses to set the
	// initial role. Empty disables it.
	TrustedRoleHeader string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessionService *session.Service,
	evaluator *authz.Evaluator,
	matrixSource string,
	auditLogger audit.Logger,
	accessMetrics *metrics.AccessMetrics,
	sessionConfig SessionConfig,
) *Handler {
	return &Handler{
		sessionService: sessionService,
		evaluator:      evaluator,
		matrixSource:   matrixSource,
		auditLogger:    auditLogger,
		accessMetrics:  accessMetrics,
		validate:       newValidator(),
		sessionConfig:  sessionConfig,
	}
}

// RouterOptions configures the outer surface of the router
type RouterOptions struct {
	// FrontendFS holds the console bundle. Nil disables SPA serving.
	FrontendFS     fs.FS
	Secure         SecureOptions
	TrustedProxies TrustedProxies
	Timeout        time.Duration
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, opts RouterOptions) *chi.Mux {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(ClientIPMiddleware(opts.TrustedProxies))
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(SecureHeaders(opts.Secure))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/roles", h.ListRoles)
		r.Get("/features", h.ListFeatures)
		r.Get("/openapi.json", h.OpenAPI)

		r.With(CSRFMiddleware).Post("/session", h.StartSession)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Use(CSRFMiddleware)

			r.Get("/session", h.GetSession)
			r.Delete("/session", h.EndSession)
			r.Put("/session/role", h.SwitchRole)

			r.Get("/access/{feature}", h.CheckAccess)

			r.With(h.RequireAccess(rbac.FeatureSettings, rbac.AccessRead)).Get("/matrix", h.GetMatrix)
		})
	})

	if opts.FrontendFS != nil {
		r.Handle("/*", SPAHandler{StaticFS: opts.FrontendFS})
	}

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":        "healthy",
		"service":       "payrollgate",
		"matrix_source": h.matrixSource,
	})
}

// ListRoles returns the enumerated roles
// @Summary List roles
// @Tags RBAC
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /roles [get]
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"roles": rbac.Roles()})
}

// ListFeatures returns the enumerated feature keys
// @Summary List feature keys
// @Tags RBAC
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /features [get]
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"features": rbac.Features(),
		"levels":   rbac.Levels(),
	})
}

// OpenAPI serves the registered API document
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read api document", logger.Error(err))
		respondError(w, http.StatusNotFound, "api document not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sessionID,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   int(h.sessionConfig.MaxAge.Seconds()),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
