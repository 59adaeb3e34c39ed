package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"barsandbios/internal/config"
	"barsandbios/internal/logging"
)

func main() {
	dir := flag.String("path", "migrations", "directory holding the migration files")
	steps := flag.Int("steps", 0, "number of migrations to apply or roll back (0 means all)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: migrate [-path dir] [-steps n] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.New(logging.Config{Level: "info", Format: "text"}).Component("migrate")

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load database config")
	}

	db, err := sql.Open("postgres", dbCfg.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Create the postgres driver for migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create postgres driver")
	}

	absPath, err := filepath.Abs(*dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve migrations path")
	}
	sourceURL := "file://" + filepath.ToSlash(absPath)

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		logger.Fatal().Err(err).Str("source", sourceURL).Msg("failed to create migrate instance")
	}

	switch command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info().Msg("no migrations applied")
			return
		}
		if verr != nil {
			logger.Fatal().Err(verr).Msg("failed to read version")
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("current schema version")
		return
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("command", command).Msg("migration failed")
	}
	logger.Info().Str("command", command).Msg("migrations complete")
}
