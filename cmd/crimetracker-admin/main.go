package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/crimetracker/crimetracker-api/config"
	redisadapter "github.com/crimetracker/crimetracker-api/internal/adapters/redis"
	"github.com/crimetracker/crimetracker-api/internal/bootstrap"
	"github.com/crimetracker/crimetracker-api/internal/data"
	"github.com/crimetracker/crimetracker-api/internal/devseed"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
	"github.com/crimetracker/crimetracker-api/internal/util"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
	defaultListLimit        = 50
)

// cliActor is recorded in the audit log for changes made from this tool.
var cliActor = domainauth.Identity{ //nolint:gochecknoglobals // fixed audit identity
	SubjectID: "crimetracker-admin",
	Email:     "crimetracker-admin",
	Role:      domainauth.RoleAdmin,
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	bootstrap.SetLogLevel(cfg.Observability.Logging.SlogLevel())

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed development profiles and cases",
			run:         runDBSeed,
		},
		"set-role": {
			name:        "set-role",
			description: "Set the role of an existing profile (use to grant the first admin)",
			run:         runSetRole,
		},
		"list-users": {
			name:        "list-users",
			description: "List profiles, optionally filtered by role",
			run:         runListUsers,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: crimetracker-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-24s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type dbSeedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

type setRoleOptions struct {
	Subject string
	Role    domainauth.Role
	Timeout time.Duration
}

type listUsersOptions struct {
	Role    *domainauth.Role
	Limit   int
	Offset  int
	Timeout time.Duration
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}

	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data on the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		dev := cmdCtx.Config.Auth.DevAuth
		cmdCtx.Logger.Info("seeding development data", "admin_subject", dev.SubjectID)
		svcs := devseed.Services{
			Profiles: data.NewProfileRepo(db),
			Reports:  data.NewReportRepo(db),
		}
		identity := devseed.Identity{SubjectID: dev.SubjectID, Email: dev.Email, DisplayName: dev.DisplayName}
		if seedErr := devseed.Run(ctx, svcs, identity, cmdCtx.Logger); seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}

		cmdCtx.Logger.Info("database seeding completed successfully")
		return nil
	})
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetRoleFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		events, closeEvents := openEventStream(cmdCtx)
		defer closeEvents()

		users := service.NewUserService(service.UserServiceOptions{
			Profiles: data.NewProfileRepo(db),
			Events:   events,
			Audit:    data.NewAuditLogRepo(db),
			Logger:   cmdCtx.Logger,
		})
		p, roleErr := users.ChangeRole(ctx, cliActor, opts.Subject, string(opts.Role))
		if roleErr != nil {
			if errors.Is(roleErr, data.ErrProfileNotFound) {
				return fmt.Errorf("no profile for subject %q; the user must sign in and register first", opts.Subject)
			}
			return fmt.Errorf("set role: %w", roleErr)
		}
		return writef(os.Stdout, "%s (%s) is now %s\n", p.SubjectID, p.Email, p.Role)
	})
}

// openEventStream connects Redis so live sessions see the role change.
// Without Redis the change still lands; guards pick it up on the next request.
func openEventStream(cmdCtx *commandContext) (ports.AuthEventStream, func()) {
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		cmdCtx.Logger.Warn("redis unavailable; live sessions will not be notified", "error", err)
		return nil, func() {}
	}
	return redisadapter.NewAuthEventStream(client, cmdCtx.Logger), func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		profiles, listErr := data.NewProfileRepo(db).List(ctx, model.ProfileListOptions{
			Role:   opts.Role,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		})
		if listErr != nil {
			return fmt.Errorf("list profiles: %w", listErr)
		}
		return printUsers(os.Stdout, time.Now(), profiles)
	})
}

func printUsers(w io.Writer, now time.Time, profiles []*model.Profile) error {
	if len(profiles) == 0 {
		return writeln(w, "No profiles found.")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "SUBJECT\tEMAIL\tNAME\tROLE\tJOINED"); err != nil {
		return err
	}
	for _, p := range profiles {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.SubjectID, p.Email, p.DisplayName, p.Role, util.FormatSince(now, p.CreatedAt)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbSeedOptions{}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for seeding to complete",
	)
	fs.BoolVar(
		&opts.AllowRemote,
		"allow-remote",
		false,
		"Permit running against database hosts that do not look local",
	)

	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbSeedOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseSetRoleFlags(args []string) (setRoleOptions, error) {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var rawRole string
	opts := setRoleOptions{}
	fs.StringVar(&opts.Subject, "subject", "", "Subject ID of the profile to change (required)")
	fs.StringVar(&rawRole, "role", "", "New role: user, lawyer or admin (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the update")

	if err := fs.Parse(args); err != nil {
		return setRoleOptions{}, err
	}
	opts.Subject = strings.TrimSpace(opts.Subject)
	if opts.Subject == "" {
		return setRoleOptions{}, errors.New("--subject is required")
	}
	opts.Role = domainauth.ParseRoleLoose(rawRole)
	if !opts.Role.Valid() {
		return setRoleOptions{}, fmt.Errorf("--role must be one of user, lawyer, admin (got %q)", rawRole)
	}
	if opts.Timeout <= 0 {
		return setRoleOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var rawRole string
	opts := listUsersOptions{}
	fs.StringVar(&rawRole, "role", "", "Only list profiles with this role")
	fs.IntVar(&opts.Limit, "limit", defaultListLimit, "Maximum number of profiles to list")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of profiles to skip")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the query")

	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	if strings.TrimSpace(rawRole) != "" {
		role := domainauth.ParseRoleLoose(rawRole)
		if !role.Valid() {
			return listUsersOptions{}, fmt.Errorf("--role must be one of user, lawyer, admin (got %q)", rawRole)
		}
		opts.Role = &role
	}
	if opts.Limit <= 0 {
		return listUsersOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return listUsersOptions{}, errors.New("--offset cannot be negative")
	}
	if opts.Timeout <= 0 {
		return listUsersOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}
