package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
)

func main() {
	var (
		path     = flag.String("path", "migrations", "path to the migration files")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// create and list work without a database connection
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("create requires a migration name")
		}
		file, err := migration.CreateMigration(*path, args[1], "")
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("up", file.UpPath),
			zap.String("down", file.DownPath),
		)
		return
	case "list":
		files, err := migration.ListMigrations(*path)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	migrator, err := migration.New(db, *path, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
		log.Info("Migrations applied")

	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}
		log.Info("Migrations rolled back")

	case "step":
		if len(args) < 2 {
			log.Fatal("step requires a step count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("step count must be an integer", zap.String("got", args[1]))
		}
		if err := migrator.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}
		log.Info("Migration step applied", zap.Int("steps", n))

	case "goto":
		if len(args) < 2 {
			log.Fatal("goto requires a target version")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("target version must be an unsigned integer", zap.String("got", args[1]))
		}
		if err := migrator.GoTo(uint(v)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}
		log.Info("Migrated to version", zap.Uint64("version", v))

	case "version":
		v, dirty, err := migrator.Version()
		if err != nil {
			log.Fatal("Failed to read version", zap.Error(err))
		}
		log.Info("Current schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))

	case "force":
		if len(args) < 2 {
			log.Fatal("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("version must be an integer", zap.String("got", args[1]))
		}
		if err := migrator.Force(v); err != nil {
			log.Fatal("Migration force failed", zap.Error(err))
		}
		log.Info("Schema version forced", zap.Int("version", v))

	case "drop":
		if len(args) < 2 || args[1] != "-confirm" {
			log.Fatal("drop destroys all data; re-run with '-confirm' to proceed")
		}
		if err := migrator.Drop(); err != nil {
			log.Fatal("Migration drop failed", zap.Error(err))
		}
		log.Info("Schema dropped")

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storefront migration tool

Usage:
  migrate [-path dir] [-log-level level] <command> [args]

Commands:
  up                 apply all pending migrations
  down               roll back all migrations
  step <n>           apply n migrations (negative rolls back)
  goto <version>     migrate to a specific version
  version            print the current schema version
  force <version>    set the schema version without running migrations
  drop -confirm      drop everything in the database
  create <name>      create a new migration file pair
  list               list migration files
`)
}
