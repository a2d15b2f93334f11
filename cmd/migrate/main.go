// Command migrate manages the database schema with goose.
//
//	migrate -cmd up|down|status          apply, roll back one, or list migrations
//	migrate -cmd version -version V      move the schema to version V
//	migrate -cmd create -name add_index  scaffold a new SQL migration
//	migrate -cmd validate                lint the migration files
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
	"github.com/hbnb-dev/hbnb-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fs.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", "", "migrations directory; empty uses the embedded set ("+migrate.DefaultDir+" for create/validate)")
	fs.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// create and validate work on files only, so they need no config.
	fileDir := opts.dir
	if fileDir == "" {
		fileDir = migrate.DefaultDir
	}
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required for create")
		}
		path, err := migrate.CreateSQLMigration(fileDir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(fileDir); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	case "up", "down", "status", "version":
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
	if opts.cmd == "version" && opts.version == "" {
		return errors.New("-version is required for version")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})
	source := opts.dir
	if source == "" {
		source = "embedded"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"cmd":     opts.cmd,
		"source":  source,
		"dialect": migrate.Dialect(cfg.DB.Driver),
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, cfg.DB.Driver, migrate.Source(opts.dir), logg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.cmd == "version" {
		err = runner.MigrateTo(ctx, opts.version)
	} else {
		err = runner.Run(ctx, opts.cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
