// sideline es la CLI de operación: migraciones y gestión del trust store de
// admins, directo contra la base (no pasa por el API).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/sideline/internal/config"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
	"github.com/dropDatabas3/sideline/internal/store/pg"
	"github.com/dropDatabas3/sideline/internal/validation"
	migrations "github.com/dropDatabas3/sideline/migrations/postgres"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "sideline",
		Short:        "CLI de operación: migraciones y admins",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.example.yaml", "Path al YAML de configuración")

	root.AddCommand(migrateCmd(&configPath))
	root.AddCommand(adminCmd(&configPath))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore carga config y abre el pool. El caller cierra con store.Close().
func openStore(ctx context.Context, configPath string) (*pg.Store, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.DSN == "" {
		return nil, fmt.Errorf("storage.dsn vacío (config o STORAGE_DSN)")
	}

	logger.Init(logger.Config{Env: "dev", Level: "warn"})

	return pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Aplica migraciones (default: up, todas)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			steps := 0
			if len(args) >= 1 {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("steps inválido: %q", args[1])
				}
				steps = n
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			store, err := openStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx, migrations.FS, action, steps); err != nil {
				return err
			}
			fmt.Printf("migrate %s: done\n", action)
			return nil
		},
	}
}

func adminCmd(configPath *string) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Gestión del trust store de admins",
	}

	var role string
	grant := &cobra.Command{
		Use:   "grant <email>",
		Short: "Da (o reactiva) acceso admin a un email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validation.ValidEmail(args[0]) {
				return fmt.Errorf("email inválido: %q", args[0])
			}
			r := core.AdminRole(role)
			if !r.Valid() {
				return fmt.Errorf("rol inválido %q (admin|super_admin)", role)
			}
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *pg.Store) error {
				g, err := store.Grant(ctx, args[0], r)
				if err != nil {
					return err
				}
				fmt.Printf("granted %s role=%s\n", g.Email, g.Role)
				return nil
			})
		},
	}
	grant.Flags().StringVar(&role, "role", "admin", "Rol: admin | super_admin")

	revoke := &cobra.Command{
		Use:   "revoke <email>",
		Short: "Revoca el acceso (soft delete, la fila queda)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *pg.Store) error {
				ok, err := store.Revoke(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no hay grant para %s", args[0])
				}
				fmt.Printf("revoked %s\n", core.NormalizeEmail(args[0]))
				return nil
			})
		},
	}

	setRole := &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Cambia el rol de un admin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := core.AdminRole(args[1])
			if !r.Valid() {
				return fmt.Errorf("rol inválido %q (admin|super_admin)", args[1])
			}
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *pg.Store) error {
				ok, err := store.SetRole(ctx, args[0], r)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no hay grant para %s", args[0])
				}
				fmt.Printf("role of %s set to %s\n", core.NormalizeEmail(args[0]), r)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los admins activos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *pg.Store) error {
				gs, err := store.Admins().ListActive(ctx)
				if err != nil {
					return err
				}
				if len(gs) == 0 {
					fmt.Println("(sin admins activos)")
					return nil
				}
				for _, g := range gs {
					fmt.Printf("%-40s %-12s %s\n", g.Email, g.Role, g.CreatedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	admin.AddCommand(grant, revoke, setRole, list)
	return admin
}

func withStore(parent context.Context, configPath string, fn func(context.Context, *pg.Store) error) error {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, store)
}
