package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|redo|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory used by create and validate")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the source tree.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			exit(errors.New("missing -name for create"))
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
		if err != nil {
			exit(err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			exit(err)
		}
		fmt.Println("migrations valid:", opts.dir)
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		exit(err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": opts.cmd})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) (err error) {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up", "down", "redo", "status":
		err = migrate.Run(ctx, sqlDB, opts.cmd)
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.version)
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
	if err != nil {
		return err
	}

	current, err := migrate.Version(ctx, sqlDB)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "version", current), "migrate.complete")
	return nil
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, "migrate:", err)
	os.Exit(1)
}
