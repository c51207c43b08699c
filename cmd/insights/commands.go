package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alem-hub/student-insights/config"
	"github.com/alem-hub/student-insights/internal/application/query"
	"github.com/alem-hub/student-insights/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-insights/internal/infrastructure/persistence/roster"
	"github.com/alem-hub/student-insights/pkg/logger"
	"github.com/alem-hub/student-insights/pkg/timeutil"

	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	configFile string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "insights",
		Short: "Query and aggregate a student roster",
		Long: `insights loads a student roster from a JSON file or PostgreSQL
and answers filter, ranking and aggregation questions about it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(
		a.summaryCmd(),
		a.queryCmd(),
		a.operationsCmd(),
		a.migrateCmd(),
		a.importCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Load configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	timeutil.Zone = cfg.App.Location

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Setup logging
	// ─────────────────────────────────────────────────────────────────────────
	level := cfg.Observability.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(logger.Options{
		Output:    cmd.ErrOrStderr(),
		Level:     logger.ParseLevel(level),
		AddCaller: cfg.IsDevelopment(),
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)

	cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the headline statistics of the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return writeJSON(cmd.OutOrStdout(), engine.Summary())
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	var q query.RunQuery

	cmd := &cobra.Command{
		Use:   "query <operation>",
		Short: "Run one roster operation and print the result as JSON",
		Long: `Run one roster operation by name. Names match case-insensitively;
see "insights operations" for the full list.`,
		Example: `  insights query StudentsFromUniversity --university MIT
  insights query TopStudentsByGPA --percent 25
  insights query StudentsBornInMonth --month 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Operation = args[0]
			if q.Year == 0 {
				q.Year = a.cfg.Analytics.CurrentYear
			}
			// Reject bad input before touching the roster source.
			if err := q.Validate(); err != nil {
				return err
			}

			engine, cleanup, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := query.NewRunQueryHandler(engine).Handle(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.University, "university", "", "university name (exact match)")
	f.StringVar(&q.Major, "major", "", "major name (exact match)")
	f.StringVar(&q.AreaCode, "area-code", "", "phone number prefix")
	f.IntVar(&q.Year, "year", 0, "graduation or current year (default: current year)")
	f.IntVar(&q.Month, "month", 0, "birth month, 1-12")
	f.IntVar(&q.MinCredits, "min-credits", 0, "minimum credit hours")
	f.IntVar(&q.Percent, "percent", query.TopPercentByGPA, "top percentage to select, 1-100")
	return cmd
}

func (a *app) operationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the operation names accepted by query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(query.Operations(), "\n"))
			return err
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DATABASE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the PostgreSQL roster schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			conn, err := a.connectPostgres(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			switch action {
			case "down":
				if err := migrator.Rollback(ctx); err != nil {
					return err
				}
				log.Info("rolled back last migration")
				return nil

			case "status":
				status, err := migrator.Status(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, m := range status {
					state := "pending"
					if m.IsApplied {
						state = "applied " + m.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(out, "%03d %-24s %s\n", m.Version, m.Name, state)
				}
				return nil

			default:
				n, err := migrator.Migrate(ctx)
				if err != nil {
					return err
				}
				log.Info("migrations applied", logger.Int("count", n))
				return nil
			}
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the PostgreSQL roster with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			students, err := roster.NewFileSource(args[0]).LoadStudents(ctx)
			if err != nil {
				return err
			}

			conn, err := a.connectPostgres(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			repo := postgres.NewStudentRepository(conn, log)
			n, err := repo.ReplaceAll(ctx, students)
			if err != nil {
				return err
			}
			log.Info("roster imported",
				logger.String("file", args[0]),
				logger.Int64("rows", n))

			a.invalidateSnapshot(ctx, repo, config.SourcePostgres)
			return nil
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
