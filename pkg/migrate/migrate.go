// Package migrate applies the goose SQL migrations under migrations/. The
// files are embedded so the API binary can migrate without a source tree.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// DefaultDir is where create and validate look when no -dir is given.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source picks the embedded set when dir is empty, else reads dir from disk.
func Source(dir string) fs.FS {
	if strings.TrimSpace(dir) == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Dialect maps a configured DB driver onto the goose dialect name.
func Dialect(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return string(goose.DialectSQLite3)
	default:
		return string(goose.DialectPostgres)
	}
}

// Runner drives a goose provider and reports each applied step to the logger.
type Runner struct {
	provider *goose.Provider
	logg     *logger.Logger
}

func NewRunner(db *sql.DB, driver string, migrations fs.FS, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("migrate: db is required")
	}
	provider, err := goose.NewProvider(goose.Dialect(Dialect(driver)), db, migrations)
	if err != nil {
		return nil, fmt.Errorf("migrate: provider: %w", err)
	}
	return &Runner{provider: provider, logg: logg}, nil
}

// Run executes up, down or status.
func (r *Runner) Run(ctx context.Context, command string) error {
	switch command {
	case "up":
		results, err := r.provider.Up(ctx)
		r.report(ctx, results...)
		return wrap("up", err)
	case "down":
		result, err := r.provider.Down(ctx)
		if result != nil {
			r.report(ctx, result)
		}
		return wrap("down", err)
	case "status":
		statuses, err := r.provider.Status(ctx)
		if err != nil {
			return wrap("status", err)
		}
		for _, st := range statuses {
			fields := map[string]any{"version": st.Source.Version, "state": string(st.State)}
			if !st.AppliedAt.IsZero() {
				fields["applied_at"] = st.AppliedAt
			}
			r.info(r.withFields(ctx, fields), "migration.status")
		}
		return nil
	default:
		return fmt.Errorf("migrate: unknown command %q", command)
	}
}

// MigrateTo moves the schema up or down until the database sits at target,
// a YYYYMMDDHHMMSS version.
func (r *Runner) MigrateTo(ctx context.Context, target string) error {
	version, err := strconv.ParseInt(strings.TrimSpace(target), 10, 64)
	if err != nil || version < 0 {
		return fmt.Errorf("migrate: invalid version %q", target)
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return wrap("version", err)
	}

	var results []*goose.MigrationResult
	switch {
	case version > current:
		results, err = r.provider.UpTo(ctx, version)
	case version < current:
		results, err = r.provider.DownTo(ctx, version)
	}
	r.report(ctx, results...)
	return wrap(fmt.Sprintf("to %d", version), err)
}

func (r *Runner) Close() error {
	return r.provider.Close()
}

func (r *Runner) report(ctx context.Context, results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		r.info(r.withFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migration.applied")
	}
}

func (r *Runner) withFields(ctx context.Context, fields map[string]any) context.Context {
	if r.logg == nil {
		return ctx
	}
	return r.logg.WithFields(ctx, fields)
}

func (r *Runner) info(ctx context.Context, msg string) {
	if r.logg != nil {
		r.logg.Info(ctx, msg)
	}
}

func wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("migrate %s: %w", step, err)
}
