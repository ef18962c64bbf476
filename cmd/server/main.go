// The patra API server: eligibility determinations for government welfare
// schemes. main wires configuration, stores, services and the HTTP router;
// business logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"patra/internal/admin"
	"patra/internal/audit"
	clienthandler "patra/internal/clients/handler"
	clientmetrics "patra/internal/clients/metrics"
	clientservice "patra/internal/clients/service"
	clientstore "patra/internal/clients/store"
	eligcache "patra/internal/eligibility/cache"
	elighandler "patra/internal/eligibility/handler"
	eligmetrics "patra/internal/eligibility/metrics"
	eligservice "patra/internal/eligibility/service"
	eligmemory "patra/internal/eligibility/store/memory"
	eligpg "patra/internal/eligibility/store/postgres"
	jwttoken "patra/internal/jwt_token"
	"patra/internal/platform/config"
	"patra/internal/platform/httpserver"
	"patra/internal/platform/logger"
	"patra/internal/platform/metrics"
	"patra/internal/platform/redis"
	"patra/internal/ratelimit"
	rlmetrics "patra/internal/ratelimit/metrics"
	"patra/internal/ruleset"
	rulestore "patra/internal/ruleset/store/postgres"
	httptransport "patra/internal/transport/http"
	platformaudit "patra/pkg/platform/audit"
	"patra/pkg/platform/audit/publisher"
	auditmemory "patra/pkg/platform/audit/store/memory"
	auditpg "patra/pkg/platform/audit/store/postgres"
	"patra/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	health := httptransport.NewHealth(log)

	// Storage. DATABASE_URL enables Postgres persistence for rule
	// documents, decisions, API clients and the audit outbox. Without it
	// everything runs in memory and rulesets come from RULESET_DIR, which
	// suits development and single-shot evaluation but survives nothing.
	var (
		db          *sql.DB
		ruleStore   *rulestore.Store
		clientStore clientservice.ClientStore
		auditWrites platformaudit.Store
		auditReads  audit.Store
	)

	var registry *ruleset.Registry
	if cfg.DatabaseURL != "" {
		pool, err := rulestore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		ruleStore = rulestore.New(pool)
		if err := ruleStore.EnsureSchema(ctx); err != nil {
			return err
		}

		active, err := ruleStore.ActiveRuleSets(ctx)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			// Fresh database: serve the bundled rulesets until documents
			// are published through the admin API.
			active, err = ruleset.LoadDir(cfg.RulesetDir)
			if err != nil {
				return err
			}
			log.Info("no active rule documents in store, loaded bundled rulesets",
				"dir", cfg.RulesetDir,
				"schemes", len(active),
			)
		}
		registry = ruleset.NewRegistry(active)

		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		health.AddProbe("database", db.PingContext)

		clientsPg := clientstore.NewPostgres(pool)
		if err := clientsPg.EnsureSchema(ctx); err != nil {
			return err
		}
		clientStore = clientsPg

		auditPg := auditpg.New(db)
		if err := auditPg.EnsureSchema(ctx); err != nil {
			return err
		}
		auditWrites, auditReads = auditPg, auditPg
	} else {
		sets, err := ruleset.LoadDir(cfg.RulesetDir)
		if err != nil {
			return err
		}
		registry = ruleset.NewRegistry(sets)
		clientStore = clientstore.NewInMemory()

		mem := auditmemory.NewInMemoryStore()
		auditWrites, auditReads = mem, mem
		log.Warn("no database configured, running with in-memory stores")
	}
	log.Info("rulesets loaded", "schemes", registry.Len())

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		health.AddProbe("redis", rdb.Health)
	}

	// Audit events land in the outbox; the relay worker ships them to
	// Kafka out of process.
	auditPub := publisher.NewPublisher(auditWrites, publisher.WithLogger(log))
	defer auditPub.Close()

	// API clients and token issuance.
	jwtService := jwttoken.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	clientsSvc := clientservice.New(clientStore, jwtService,
		clientservice.WithLogger(log),
		clientservice.WithAuditPublisher(auditPub),
		clientservice.WithMetrics(clientmetrics.New()),
		clientservice.WithTokenTTL(cfg.JWT.TTL),
	)

	// Eligibility determinations.
	eligOpts := []eligservice.Option{
		eligservice.WithLogger(log),
		eligservice.WithMetrics(eligmetrics.New()),
		eligservice.WithAuditPublisher(auditPub),
		eligservice.WithCacheTTL(cfg.DecisionCacheTTL),
	}
	if db != nil {
		decisions := eligpg.New(db)
		if err := decisions.EnsureSchema(ctx); err != nil {
			return err
		}
		eligOpts = append(eligOpts,
			eligservice.WithStore(decisions),
			eligservice.WithTransactor(tx.NewRunner(db)),
		)
	} else {
		eligOpts = append(eligOpts, eligservice.WithStore(eligmemory.New()))
	}
	if rdb != nil {
		eligOpts = append(eligOpts, eligservice.WithCache(eligcache.NewRedisCache(rdb.Client)))
	}
	eligSvc, err := eligservice.New(registry, eligOpts...)
	if err != nil {
		return err
	}

	// Per-client rate limiting needs Redis; without it requests flow
	// unthrottled.
	var limitMiddleware func(http.Handler) http.Handler
	if rdb != nil {
		limiter := ratelimit.NewLimiter(rdb.Client, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		rl := ratelimit.NewMiddleware(limiter, log,
			ratelimit.WithMetrics(rlmetrics.New()),
			ratelimit.WithAuditPublisher(auditPub),
			ratelimit.WithDisabled(cfg.RateLimit.Limit <= 0),
		)
		limitMiddleware = rl.Limit
	}

	// Admin surface: audit trail always, ruleset lifecycle only with a
	// database to hold the documents.
	auditSvc, err := audit.New(auditReads, audit.WithLogger(log))
	if err != nil {
		return err
	}
	adminRegistrars := []httptransport.Registrar{audit.NewHandler(auditSvc, log)}
	if ruleStore != nil {
		adminSvc, err := admin.New(ruleStore, registry,
			admin.WithLogger(log),
			admin.WithAuditPublisher(auditPub),
		)
		if err != nil {
			return err
		}
		adminRegistrars = append(adminRegistrars, admin.NewHandler(adminSvc, log))
	} else {
		log.Info("ruleset administration disabled: no database configured")
	}

	router := httptransport.New(httptransport.Config{
		Logger:      log,
		Metrics:     metrics.NewHTTP(),
		Auth:        jwttoken.NewJWTServiceAdapter(jwtService),
		RateLimit:   limitMiddleware,
		Token:       clienthandler.New(clientsSvc, log),
		Eligibility: elighandler.New(eligSvc, log),
		Admin:       adminRegistrars,
		Health:      health,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting patra api", "addr", cfg.Addr)
	return httpserver.Run(ctx, srv, log)
}
