// Servicio HTTP de gestión de ligas: verificación de tokens de Clerk,
// gate de admins contra el trust store local y CRUD de ligas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/sideline/internal/authn"
	"github.com/dropDatabas3/sideline/internal/cache"
	cachemem "github.com/dropDatabas3/sideline/internal/cache/memory"
	cacheredis "github.com/dropDatabas3/sideline/internal/cache/redis"
	"github.com/dropDatabas3/sideline/internal/config"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	adminctrl "github.com/dropDatabas3/sideline/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/sideline/internal/http/controllers/health"
	publicctrl "github.com/dropDatabas3/sideline/internal/http/controllers/public"
	"github.com/dropDatabas3/sideline/internal/http/router"
	leaguessvc "github.com/dropDatabas3/sideline/internal/http/services/leagues"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/rate"
	"github.com/dropDatabas3/sideline/internal/store/pg"
	migrations "github.com/dropDatabas3/sideline/migrations/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "Path al YAML de configuración")
	flag.Parse()

	// .env primero: las ENV pisan el YAML
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		lg.Fatal("pg init failed", logger.Err(err))
	}
	defer store.Close()

	if cfg.Flags.Migrate {
		if err := store.Migrate(ctx, migrations.FS, "up", 0); err != nil {
			lg.Fatal("migrate failed", logger.Err(err))
		}
	}

	// cadena de verificación: key set cacheado → verifier → gate
	keys := authn.NewKeySetCache(cfg.Clerk.JWKSURL, cfg.Clerk.JWKSTTL.Std(), cfg.Clerk.FetchTimeout.Std())
	verifier := authn.NewVerifier(keys, cfg.Clerk.Issuer)
	gate := authn.NewGate(verifier, store)

	appCache := buildCache(cfg)
	svc := leaguessvc.NewService(store, appCache)

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: store.Pool})
	if err != nil {
		lg.Fatal("metrics init failed", logger.Err(err))
	}

	handler := router.New(router.Deps{
		Gate:               gate,
		Admin:              adminctrl.NewControllers(svc, store.Admins()),
		Public:             publicctrl.NewLeaguesController(svc),
		Health:             healthctrl.NewHealthController(store, keys),
		MetricsHandler:     metricsHandler,
		RateLimiter:        buildRateLimiter(cfg, appCache),
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	lg.Info("listening",
		logger.String("addr", cfg.Server.Addr),
		logger.String("env", cfg.App.Env),
		logger.String("issuer", cfg.Clerk.Issuer),
	)
	if err := httpx.Start(ctx, cfg.Server.Addr, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server stopped", logger.Err(err))
	}
	lg.Info("shutdown complete")
}

// buildCache arma el backend de cache según config: redis en prod,
// memoria en dev/tests.
func buildCache(cfg *config.Config) cache.Cache {
	switch cfg.Cache.Kind {
	case "redis":
		return cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
	case "memory", "":
		// fallthrough al default de abajo
	default:
		fmt.Fprintf(os.Stderr, "unknown cache kind %q, using memory\n", cfg.Cache.Kind)
	}
	ttl, err := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	if err != nil || ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return cachemem.New(ttl)
}

// buildRateLimiter arma el limiter de /api. Reusa la conexión redis del cache
// cuando la hay (ventana compartida entre réplicas); si no, fixed window en
// memoria.
func buildRateLimiter(cfg *config.Config, c cache.Cache) rate.Limiter {
	rl := cfg.Server.RateLimit
	if !rl.Enabled {
		return nil
	}
	if rc, ok := c.(*cacheredis.Cache); ok {
		return rate.NewRedisLimiter(rc.Client(), "rl:", rl.Max, rl.Window.Std())
	}
	return rate.NewMemoryLimiter(rl.Max, rl.Window.Std())
}
