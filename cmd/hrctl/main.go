// Command hrctl runs maintenance tasks against the HR portal database:
// schema migrations, seeding, password resets and manager links.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
)

const usage = `Usage: hrctl [--config FILE] <command> [flags]

Commands:
  migrate up|down|version   apply, roll back or report schema migrations
  seed                      insert the admin, leave types and holidays from a seed file
  reset-password            set a new password for a user
  link-manager              assign a manager to a user
`

var errUsage = errors.New("invalid usage")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	global := pflag.NewFlagSet("hrctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	configPath := global.StringP("config", "c", "", "path to config file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errUsage
	}
	name, cmdArgs := rest[0], rest[1:]
	cmd, ok := commands[name]
	if !ok && name != "migrate" {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}
	log := logger.Get()

	if name == "migrate" {
		return migrateCmd(cfg, log, cmdArgs, out)
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return cmd(context.Background(), &env{cfg: cfg, db: db, log: log, out: out}, cmdArgs)
}
