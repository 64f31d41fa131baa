package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/socialsignin/socialguard/internal/cache"
	memcache "github.com/socialsignin/socialguard/internal/cache/memory"
	redcache "github.com/socialsignin/socialguard/internal/cache/redis"
	"github.com/socialsignin/socialguard/internal/config"
	"github.com/socialsignin/socialguard/internal/connect"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	connectctrl "github.com/socialsignin/socialguard/internal/http/controllers/connect"
	healthctrl "github.com/socialsignin/socialguard/internal/http/controllers/health"
	mectrl "github.com/socialsignin/socialguard/internal/http/controllers/me"
	signupctrl "github.com/socialsignin/socialguard/internal/http/controllers/signup"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/http/router"
	"github.com/socialsignin/socialguard/internal/metrics"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/rate"
	"github.com/socialsignin/socialguard/internal/security/access"
	"github.com/socialsignin/socialguard/internal/security/authn"
	"github.com/socialsignin/socialguard/internal/security/registry"
	"github.com/socialsignin/socialguard/internal/session"
	"github.com/socialsignin/socialguard/internal/signup"
	memstore "github.com/socialsignin/socialguard/internal/store/adapters/memory"
	pgstore "github.com/socialsignin/socialguard/internal/store/adapters/pg"
	migrations "github.com/socialsignin/socialguard/migrations/postgres"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// El logger todavía no existe: stderr directo.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "socialguard",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal("metrics registration failed", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Store de cuentas ──
	var (
		accounts repository.AccountRepository
		ping     healthctrl.StorePinger
	)
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pgstore.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			log.Fatal("postgres open failed", logger.Err(err))
		}
		defer store.Close()
		if cfg.Storage.Postgres.Migrate {
			if err := store.RunMigrations(ctx, migrations.SchemaFS, migrations.SchemaDir); err != nil {
				log.Fatal("migrations failed", logger.Err(err))
			}
		}
		accounts = store
		ping = store.Ping
	default:
		accounts = memstore.New()
	}

	// ── Cache ──
	var backend cache.Cache
	var redisClientCache *redcache.Cache
	switch cfg.Cache.Kind {
	case "redis":
		redisClientCache = redcache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		backend = redisClientCache
	default:
		backend = memcache.New(cfg.CacheDefaultTTL())
	}

	// ── Seguridad: registry, política y resolver ──
	reg := registry.New(cfg.Providers)
	factory := authn.NewFactory(reg)
	oracle := access.NewRuleOracle(buildRules(cfg.Access.Rules))
	resolver, err := access.NewResolver(oracle, reg, factory,
		access.WithParallelism(cfg.Access.Parallelism))
	if err != nil {
		log.Fatal("resolver construction failed", logger.Err(err))
	}

	// ── Sign-up ──
	sessions := connect.NewSessions(backend, cfg.PendingTTL())
	coordinator := signup.NewCoordinator(accounts, sessions)

	issuer, err := session.NewIssuer([]byte(cfg.Session.Secret), cfg.Session.Issuer, cfg.SessionTTL())
	if err != nil {
		log.Fatal("session issuer construction failed", logger.Err(err))
	}
	issuer.CookieName = cfg.Session.CookieName
	issuer.Secure = cfg.Session.Secure

	// ── Rate limiting ──
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if redisClientCache != nil {
			limiter = rate.NewRedisLimiter(redisClientCache.Client(), "rl:", cfg.Rate.MaxRequests, cfg.RateWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
		}
	}

	handler := router.New(router.Deps{
		Signup:         signupctrl.NewController(coordinator, factory, issuer),
		Connect:        connectctrl.NewController(reg),
		Health:         healthctrl.NewHealthController(ping),
		Me:             mectrl.NewController(accounts),
		Oracle:         oracle,
		Resolver:       resolver,
		Authentication: mw.WithAuthentication(issuer),
		RateLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("listening", logger.String("addr", cfg.Server.Addr),
			logger.Providers(reg.ProviderIDs()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", logger.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", logger.Err(err))
	}
}

// buildRules traduce las reglas declarativas de la config al modelo interno.
func buildRules(in []config.RuleConfig) []access.Rule {
	out := make([]access.Rule, 0, len(in))
	for _, rc := range in {
		out = append(out, access.Rule{
			PathPrefix: rc.PathPrefix,
			Methods:    rc.Methods,
			AnyOf:      toAuthorities(rc.AnyOf),
			AllOf:      toAuthorities(rc.AllOf),
		})
	}
	return out
}

func toAuthorities(in []string) []authn.Authority {
	out := make([]authn.Authority, len(in))
	for i, s := range in {
		out[i] = authn.Authority(s)
	}
	return out
}
