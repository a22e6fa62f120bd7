package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dropDatabas3/sideline/internal/observability/logger"
)

// Migrate aplica las migraciones embebidas. action es "up" o "down"; steps
// limita cuántas (0 = todas). Los archivos se nombran NNNN_nombre_up.sql /
// NNNN_nombre_down.sql y se aplican en orden lexicográfico (reverso para down).
//
// Sin tabla de versiones: las migraciones son idempotentes (IF NOT EXISTS),
// re-aplicarlas es inocuo.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS, action string, steps int) error {
	var suffix string
	switch strings.ToLower(action) {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return fmt.Errorf("unknown migrate action %q (want up|down)", action)
	}

	files, err := listSQL(fsys, suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.L().Info("no migrations to apply", logger.String("action", action))
		return nil
	}

	sort.Strings(files)
	if suffix == "_down.sql" {
		reverseInPlace(files)
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	for _, f := range files {
		sql, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		logger.L().Info("migration applied", logger.String("file", f))
	}
	return nil
}

func listSQL(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}
