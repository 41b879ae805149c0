package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"caseflow/internal/audit"
	"caseflow/internal/casetoken"
	"caseflow/internal/decision"
	decisionmetrics "caseflow/internal/decision/metrics"
	"caseflow/internal/facts"
	"caseflow/internal/notice"
	"caseflow/internal/platform/config"
	"caseflow/internal/platform/httpserver"
	"caseflow/internal/platform/logger"
	platformmetrics "caseflow/internal/platform/metrics"
	"caseflow/internal/platform/postgres"
	"caseflow/internal/platform/redis"
	"caseflow/internal/ratelimit"
	"caseflow/internal/rules"
	httptransport "caseflow/internal/transport/http"
	"caseflow/internal/wizard"
	wizardhandler "caseflow/internal/wizard/handler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		caseStore  wizard.Store
		factStore  facts.Store
		auditStore audit.Store
	)
	if db != nil {
		caseStore = wizard.NewPostgresStore(db)
		factStore = facts.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		caseStore = wizard.NewInMemoryStore()
		factStore = facts.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	evaluator, err := rules.NewPredicateEvaluator()
	if err != nil {
		log.Error("predicate evaluator init failed", "error", err)
		os.Exit(1)
	}
	loader := rules.NewLoader(cfg.RulepackDir)

	decisions := decision.NewService(loader, evaluator, log, decisionmetrics.New())
	notices := notice.NewService(decisions, loader, log)
	tokens := casetoken.NewService(cfg.CaseTokenKey, cfg.CaseTokenTTL)

	trail := audit.NewRecorder(auditStore, log)
	wizardService := wizard.NewService(
		caseStore, factStore, decisions, notices, tokens, cache, trail, log, cfg.PaidEditWindow, cfg.Redis.DecisionTTL,
	)

	var limitStore ratelimit.Store
	if cache != nil {
		limitStore = ratelimit.NewRedisStore(cache)
	} else {
		limitStore = ratelimit.NewInMemoryStore()
	}
	createLimit := ratelimit.Middleware(limitStore, cfg.CreateRateLimit, cfg.CreateRateWindow, log)

	checks := map[string]httptransport.HealthChecker{}
	if cache != nil {
		checks["redis"] = cache
	}
	if db != nil {
		checks["postgres"] = dbChecker{db: db}
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Wizard:  wizardhandler.New(wizardService, log, tokens, createLimit),
		Logger:  log,
		Metrics: platformmetrics.New(),
		Checks:  checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting caseflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if cache != nil {
		_ = cache.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

type dbChecker struct{ db *sql.DB }

func (c dbChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
