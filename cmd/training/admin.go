package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/ERPlora/module-training/internal/adapter/postgres"
	"github.com/ERPlora/module-training/internal/config"
	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/export"
	"github.com/ERPlora/module-training/internal/service"
)

// runAdmin dispatches admin subcommands (migrate, token, export).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "migrate":
		return runAdminMigrate(args[1:])
	case "token":
		return runAdminToken(args[1:])
	case "export":
		return runAdminExport(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: training admin <command> [options]

Commands:
  migrate up|down|version   Apply, roll back or show schema migrations
  token                     Mint a session token for local development
  export                    Export the records of a tenant
  help                      Show this help message

Examples:
  training admin migrate up
  training admin migrate down --steps 1
  training admin token --tenant 6ba7b810-9dad-11d1-80b4-00c04fd430c8 --user dev
  training admin export --tenant 6ba7b810-9dad-11d1-80b4-00c04fd430c8 --kind skills
  training admin export --tenant 6ba7b810-9dad-11d1-80b4-00c04fd430c8 --kind training_programs --format excel --out programs.xlsx
`)
}

func loadAdminConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runAdminMigrate(args []string) error {
	if len(args) == 0 {
		return errors.New("migrate needs one of: up, down, version")
	}
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to roll back (down only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "up":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Migrations applied.")
	case "down":
		if *steps < 1 {
			return errors.New("--steps must be at least 1")
		}
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *steps); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Rolled back %d migration(s).\n", *steps)
	case "version":
		v, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		fmt.Println(v)
	default:
		return fmt.Errorf("unknown migrate command: %s", args[0])
	}
	return nil
}

func runAdminToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	tenantFlag := fs.String("tenant", "", "tenant (hub) id (required)")
	userID := fs.String("user", "admin", "user id recorded in the token")
	ttl := fs.Duration("ttl", 0, "token lifetime (default: auth.token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tid, err := tenant.Parse(*tenantFlag)
	if err != nil {
		return fmt.Errorf("--tenant: %w", err)
	}
	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.Auth.TokenTTL
	}

	sessions, _, err := newSessions(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := sessions.Issue(tid, *userID, lifetime)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "Token for tenant %s expires %s\n", tid, time.Now().Add(lifetime).Format(time.RFC3339))
	return nil
}

// tableSource is the part of a kind's service the export command uses.
type tableSource interface {
	Table(ctx context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) (export.Table, error)
}

func runAdminExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	tenantFlag := fs.String("tenant", "", "tenant (hub) id (required)")
	kind := fs.String("kind", "", "training_programs, skills or employee_trainings (required)")
	format := fs.String("format", "", "csv or excel (default: a table on a terminal, csv otherwise)")
	out := fs.String("out", "", "output file (default: stdout)")
	search := fs.String("q", "", "search term")
	sortKey := fs.String("sort", "", "sort key")
	dir := fs.String("dir", "asc", "sort direction (asc, desc)")
	visibility := fs.String("visibility", "live", "live, or all to include deleted records")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tid, err := tenant.Parse(*tenantFlag)
	if err != nil {
		return fmt.Errorf("--tenant: %w", err)
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	var src tableSource
	switch *kind {
	case program.Listing.Kind:
		src = service.NewProgramService(store, nil, nil)
	case skill.Listing.Kind:
		src = service.NewSkillService(store, nil, nil)
	case enrollment.Listing.Kind:
		src = service.NewEnrollmentService(store, nil, nil)
	default:
		return fmt.Errorf("unknown --kind %q", *kind)
	}

	q := listing.Query{Search: *search, Sort: *sortKey, Dir: listing.ParseDirection(*dir)}
	t, err := src.Table(ctx, tid, q, record.ParseVisibility(*visibility))
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if *format == "" {
		if *out == "" && term.IsTerminal(int(os.Stdout.Fd())) {
			return printTable(os.Stdout, t)
		}
		*format = string(export.CSV)
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	if f == export.Excel && *out == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write a spreadsheet to a terminal; use --out")
	}
	if err := export.Write(w, f, t); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d %s record(s).\n", len(t.Rows), *kind)
	return nil
}

// printTable writes t as aligned columns for reading in a terminal.
func printTable(w io.Writer, t export.Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Headers, "\t")))
	for _, row := range t.Rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
