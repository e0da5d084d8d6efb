package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/migrations"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/seed"
	userssvc "github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// env carries what database commands need.
type env struct {
	cfg *config.Config
	db  *repository.DB
	log *logger.Logger
	out io.Writer
}

func (e *env) users() *userssvc.Service {
	return userssvc.NewService(repository.NewUserRepository(e.db), auth.NewPasswordHasher(e.cfg.Auth.BcryptCost), e.log)
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"seed":           seedCmd,
	"reset-password": resetPasswordCmd,
	"link-manager":   linkManagerCmd,
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func seedCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("seed")
	file := fs.StringP("file", "f", "", "seed file (YAML); the built-in leave types are used when empty")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	f := &seed.File{LeaveTypes: seed.DefaultLeaveTypes()}
	if *file != "" {
		loaded, err := seed.Load(*file)
		if err != nil {
			return err
		}
		f = loaded
	}

	seeder := seed.NewSeeder(
		repository.NewUserRepository(e.db),
		repository.NewCatalogRepository(e.db),
		auth.NewPasswordHasher(e.cfg.Auth.BcryptCost),
		e.log,
	)
	res, err := seeder.Run(ctx, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "admin created: %t\nleave types created: %d\nholidays created: %d\nskipped: %d\n",
		res.AdminCreated, res.LeaveTypesCreated, res.HolidaysCreated, res.Skipped)
	return nil
}

func resetPasswordCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("reset-password")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "new password (defaults to $HR_NEW_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *password == "" {
		*password = os.Getenv("HR_NEW_PASSWORD")
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: --email and --password are required", errUsage)
	}

	if err := e.users().ResetPassword(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "password reset for %s\n", *email)
	return nil
}

func linkManagerCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("link-manager")
	employee := fs.String("employee", "", "email of the user to update")
	manager := fs.String("manager", "", "email of the new manager")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *employee == "" || *manager == "" {
		return fmt.Errorf("%w: --employee and --manager are required", errUsage)
	}

	user, err := e.users().LinkManager(ctx, *employee, *manager)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s now reports to %s (manager_id=%d)\n", user.Email, *manager, *user.ManagerID)
	return nil
}

func migrateCmd(cfg *config.Config, log *logger.Logger, args []string, out io.Writer) error {
	fs := newFlagSet("migrate")
	steps := fs.Int("steps", 0, "number of migrations to roll back (down only; 0 rolls back all)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: migrate needs one of up, down, version", errUsage)
	}
	action := fs.Arg(0)
	switch action {
	case "up", "down", "version":
	default:
		return fmt.Errorf("%w: unknown migrate action %q", errUsage, action)
	}

	runner, err := migrations.New(cfg.Database.Postgres.MigrationURL(), log)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	switch action {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down(*steps)
	}
	if err != nil {
		return err
	}

	version, dirty, err := runner.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version: %s (dirty: %t)\n", strconv.FormatUint(uint64(version), 10), dirty)
	return nil
}
