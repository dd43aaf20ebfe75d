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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/opentrusty/payrollgate/docs"
	"github.com/opentrusty/payrollgate/internal/audit"
	"github.com/opentrusty/payrollgate/internal/authz"
	"github.com/opentrusty/payrollgate/internal/config"
	"github.com/opentrusty/payrollgate/internal/observability/logger"
	"github.com/opentrusty/payrollgate/internal/observability/metrics"
	"github.com/opentrusty/payrollgate/internal/observability/tracing"
	"github.com/opentrusty/payrollgate/internal/rbac"
	"github.com/opentrusty/payrollgate/internal/session"
	"github.com/opentrusty/payrollgate/internal/store/postgres"
	redisstore "github.com/opentrusty/payrollgate/internal/store/redis"
	transportHTTP "github.com/opentrusty/payrollgate/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	cmd := "server"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "server":
		err = runServer(cfg)
	case "migrate":
		err = runMigrate(cfg)
	case "check-matrix":
		err = runCheckMatrix(cfg)
	default:
		err = fmt.Errorf("unknown command %q (want server, migrate or check-matrix)", cmd)
	}
	if err != nil {
		fmt.Printf("%s failed: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()
	slog.Info("starting payrollgate", slog.String("env", cfg.Env))

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   cfg.Observability.SamplingRate,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	} else {
		defer tracer.Shutdown(ctx)
	}

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled:        cfg.Observability.MetricsEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer meter.Shutdown(ctx)
	accessMetrics, err := metrics.NewAccessMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to register access metrics: %w", err)
	}

	auditLogger := audit.NewSlogLogger()

	// Initialize database only when a component reads it
	var db *postgres.DB
	if cfg.NeedsDatabase() {
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	matrix, err := loadMatrix(ctx, cfg, db)
	if err != nil {
		return err
	}
	auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMatrixLoaded,
		Resource: "matrix",
		Metadata: map[string]any{
			"source":  cfg.RBAC.MatrixSource,
			"default": matrix.Equal(rbac.DefaultMatrix()),
		},
	})

	repo, closeRepo, err := openSessionStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize services
	evaluator := authz.NewEvaluator(matrix)
	sessionService := session.NewService(repo, evaluator, auditLogger, session.Options{
		DefaultRole:        cfg.Session.DefaultRole,
		AllowRoleSwitch:    cfg.Session.AllowRoleSwitch,
		RequireTrustedRole: cfg.Session.RequireTrustedRole,
		Lifetime:           cfg.Session.Lifetime,
		IdleTimeout:        cfg.Session.IdleTimeout,
	})

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		sessionService,
		evaluator,
		cfg.RBAC.MatrixSource,
		auditLogger,
		accessMetrics,
		transportHTTP.SessionConfig{
			CookieName:        cfg.Session.CookieName,
			CookieDomain:      cfg.Session.CookieDomain,
			CookiePath:        cfg.Session.CookiePath,
			CookieSecure:      cfg.Session.CookieSecure,
			CookieHTTPOnly:    true,
			CookieSameSite:    cfg.Session.SameSiteMode(),
			MaxAge:            cfg.Session.Lifetime,
			TrustedRoleHeader: cfg.Session.TrustedRoleHeader,
		},
	)

	trustedProxies, err := transportHTTP.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	routerOpts := transportHTTP.RouterOptions{
		Secure: transportHTTP.SecureOptions{
			Production:   cfg.IsProduction(),
			AllowedHosts: cfg.Server.AllowedHosts,
		},
		TrustedProxies: trustedProxies,
		Timeout:        cfg.Server.WriteTimeout,
	}
	if cfg.Server.FrontendDir != "" {
		routerOpts.FrontendFS = os.DirFS(cfg.Server.FrontendDir)
	}

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter, routerOpts)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start session cleanup goroutine
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(cfg.Session.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if err := sessionService.CleanupExpired(cleanupCtx); err != nil {
					slog.ErrorContext(cleanupCtx, "failed to cleanup expired sessions", logger.Error(err))
				}
			}
		}
	}()

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"), slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("connected to database", logger.Component("postgres"))
	return db, nil
}

func loadMatrix(ctx context.Context, cfg *config.Config, db *postgres.DB) (*rbac.Matrix, error) {
	var src rbac.Source
	switch cfg.RBAC.MatrixSource {
	case rbac.SourceYAML:
		src = rbac.YAMLSource{Path: cfg.RBAC.MatrixFile}
	case rbac.SourcePostgres:
		src = postgres.NewMatrixSource(db)
	default:
		src = rbac.StaticSource{}
	}

	m, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s matrix: %w", cfg.RBAC.MatrixSource, err)
	}
	slog.Info("permission matrix loaded", logger.Source(cfg.RBAC.MatrixSource))
	return m, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config, db *postgres.DB) (session.Repository, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			URL:            cfg.Redis.URL,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
			RetryAttempts:  cfg.Redis.RetryAttempts,
			RetryInterval:  cfg.Redis.RetryInterval,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("connected to redis", logger.Component("redis"))
		return redisstore.NewSessionRepository(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	case config.StorePostgres:
		return postgres.NewSessionRepository(db), func() {}, nil
	default:
		return session.NewMemoryRepository(), func() {}, nil
	}
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying migrations...")
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}

// runCheckMatrix loads the configured matrix, which validates completeness,
// and prints it as YAML.
func runCheckMatrix(cfg *config.Config) error {
	ctx := context.Background()

	var db *postgres.DB
	if cfg.RBAC.MatrixSource == rbac.SourcePostgres {
		var err error
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	m, err := loadMatrix(ctx, cfg, db)
	if err != nil {
		return err
	}

	out, err := rbac.MarshalYAML(m)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return err
	}

	if !m.Equal(rbac.DefaultMatrix()) {
		slog.Warn("matrix differs from the built-in default", logger.Source(cfg.RBAC.MatrixSource))
	}
	return nil
}
