// Command migrate applies the embedded schema migrations.
//
//	migrate [-dsn URL] up | down | version | steps N | force V
//
// Without -dsn the connection string comes from OUTREACH_DB_DSN, then from
// the server configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/migrations"
)

const envDSN = "OUTREACH_DB_DSN"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dsn := flag.String("dsn", "", "PostgreSQL connection URL")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-dsn URL] up | down | version | steps N | force V")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dsn, flag.Args(), logger); err != nil {
		logger.Error("migrate failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(dsn string, args []string, logger *slog.Logger) error {
	dsn, err := resolveDSN(dsn)
	if err != nil {
		return err
	}

	m, err := migrations.New(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		return report(logger, cmd, m.Up())
	case "down":
		return report(logger, cmd, m.Down())
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return report(logger, cmd, m.Steps(n))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return report(logger, cmd, m.Force(v))
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// report treats migrate.ErrNoChange as success.
func report(logger *slog.Logger, cmd string, err error) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema already current", "command", cmd)
	case err != nil:
		return err
	default:
		logger.Info("migration complete", "command", cmd)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires an integer argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", args[0], err)
	}
	return n, nil
}

func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if env := os.Getenv(envDSN); env != "" {
		return env, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config for dsn: %w", err)
	}
	return cfg.Database.Dsn(), nil
}
