// seed provisiona el primer admin: corre las migraciones y crea el grant
// inicial. Pensado para el bootstrap de un ambiente nuevo, es idempotente.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/sideline/internal/config"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
	"github.com/dropDatabas3/sideline/internal/store/pg"
	"github.com/dropDatabas3/sideline/internal/validation"
	migrations "github.com/dropDatabas3/sideline/migrations/postgres"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.example.yaml", "Path al YAML de configuración")
		email      = flag.String("email", os.Getenv("ADMIN_EMAIL"), "Email del primer admin (env ADMIN_EMAIL)")
		role       = flag.String("role", envOr("ADMIN_ROLE", "super_admin"), "Rol del primer admin (env ADMIN_ROLE)")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *email == "" {
		log.Fatal("falta el email: flag -email o env ADMIN_EMAIL")
	}
	if !validation.ValidEmail(*email) {
		log.Fatalf("email inválido: %q", *email)
	}
	r := core.AdminRole(*role)
	if !r.Valid() {
		log.Fatalf("rol inválido %q (admin|super_admin)", *role)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn vacío (config o STORAGE_DSN)")
	}

	logger.Init(logger.Config{Env: "dev", Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{})
	if err != nil {
		log.Fatalf("pg: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, migrations.FS, "up", 0); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	g, err := store.Grant(ctx, *email, r)
	if err != nil {
		log.Fatalf("grant: %v", err)
	}
	log.Printf("seed ok: %s role=%s", g.Email, g.Role)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
