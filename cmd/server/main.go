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

	"dladmin/internal/admin"
	"dladmin/internal/application"
	applicationhandler "dladmin/internal/application/handler"
	applicationmetrics "dladmin/internal/application/metrics"
	"dladmin/internal/backend"
	"dladmin/internal/eligibility"
	jwttoken "dladmin/internal/jwt_token"
	"dladmin/internal/lookup"
	lookuphandler "dladmin/internal/lookup/handler"
	lookupmetrics "dladmin/internal/lookup/metrics"
	"dladmin/internal/platform/config"
	"dladmin/internal/platform/httpserver"
	"dladmin/internal/platform/kafka"
	"dladmin/internal/platform/logger"
	"dladmin/internal/platform/metrics"
	"dladmin/internal/platform/postgres"
	"dladmin/internal/platform/redis"
	"dladmin/internal/printqueue"
	printqueuehandler "dladmin/internal/printqueue/handler"
	ruleshandler "dladmin/internal/rules/handler"
	httptransport "dladmin/internal/transport/http"
	"dladmin/internal/wizard"
	wizardhandler "dladmin/internal/wizard/handler"
	wizardmetrics "dladmin/internal/wizard/metrics"
	audit "dladmin/pkg/platform/audit"
	auditkafka "dladmin/pkg/platform/audit/kafka"
	"dladmin/pkg/platform/audit/publisher"
	auditmemory "dladmin/pkg/platform/audit/store/memory"
	auditpostgres "dladmin/pkg/platform/audit/store/postgres"
	authmw "dladmin/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := metrics.NewRegistry()
	health := map[string]httptransport.HealthCheck{}
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		health["redis"] = redisClient.Health
	}

	auditStore, auditSinks, err := buildAudit(ctx, cfg, log, health, &closers)
	if err != nil {
		return err
	}
	publisherOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
	}
	for _, sink := range auditSinks {
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditor := publisher.NewPublisher(auditStore, publisherOpts...)
	closers = append(closers, auditor.Close)

	be, err := backend.New(backend.Config{
		BaseURL:  cfg.Backend.BaseURL,
		APIKey:   cfg.Backend.APIKey,
		Timeout:  cfg.Backend.Timeout,
		RetryMax: cfg.Backend.RetryMax,
	}, backend.WithLogger(log))
	if err != nil {
		return err
	}

	var (
		sessions wizard.Store
		cache    lookup.Cache
	)
	if redisClient != nil {
		sessions = wizard.NewRedisStore(redisClient.Client, cfg.Wizard.SessionTTL)
		cache = lookup.NewRedisCache(redisClient.Client, cfg.Lookup.CacheTTL)
	} else {
		sessions = wizard.NewInMemoryStore(cfg.Wizard.SessionTTL)
		cache = lookup.NewMemoryCache(cfg.Lookup.CacheTTL)
	}

	policy := eligibility.ParsePolicy(cfg.Wizard.AlreadyHeldPolicy)
	wizardService := wizard.NewService(sessions, be,
		wizard.WithPolicy(policy),
		wizard.WithLogger(log),
		wizard.WithMetrics(wizardmetrics.New(reg)),
		wizard.WithAuditor(auditor),
	)
	submissions := application.NewService(wizardService, be,
		application.WithLogger(log),
		application.WithMetrics(applicationmetrics.New(reg)),
		application.WithAuditor(auditor),
	)
	lookups := lookup.NewService(be, cache,
		lookup.WithLogger(log),
		lookup.WithMetrics(lookupmetrics.New(reg)),
	)
	printQueue := printqueue.NewService(be)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	deps := httptransport.Deps{
		Logger:    log,
		Validator: jwttoken.NewMiddlewareValidator(jwtService),
		AuthOpts:  []authmw.Option{authmw.WithAuditor(auditor)},
		Officer: []httptransport.Registrar{
			ruleshandler.New(policy, log),
			wizardhandler.New(wizardService, log),
			applicationhandler.New(submissions, log),
			lookuphandler.New(lookups, log),
			printqueuehandler.New(printQueue, log),
		},
		Metrics: metrics.Handler(reg),
		Health:  health,
	}
	if cfg.AdminToken != "" {
		deps.Admin = []httptransport.Registrar{admin.New(lookups, auditStore, log)}
		deps.AdminToken = cfg.AdminToken
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting dladmin", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildAudit picks the audit store (Postgres when configured) and the Kafka
// sink when brokers are set.
func buildAudit(ctx context.Context, cfg config.Server, log *slog.Logger, health map[string]httptransport.HealthCheck, closers *[]func()) (audit.Store, []audit.Publisher, error) {
	var store audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, func() { _ = db.Close() })
		pg := auditpostgres.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("audit schema: %w", err)
		}
		store = pg
		health["postgres"] = db.PingContext
	}

	var sinks []audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewClient(ctx, cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, client.Close)
		if err := auditkafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		sinks = append(sinks, auditkafka.NewPublisher(client, cfg.Kafka.AuditTopic))
		health["kafka"] = client.Ping
	}
	return store, sinks, nil
}
