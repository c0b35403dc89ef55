package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/glovebenefits/ichracalc/internal/affordability"
	"github.com/glovebenefits/ichracalc/internal/config"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/engine"
	"github.com/glovebenefits/ichracalc/internal/geo"
	"github.com/glovebenefits/ichracalc/internal/logging"
	"github.com/glovebenefits/ichracalc/internal/output"
	"github.com/glovebenefits/ichracalc/internal/rates"
	"github.com/glovebenefits/ichracalc/internal/server"
	"github.com/glovebenefits/ichracalc/internal/store"
	"github.com/glovebenefits/ichracalc/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagFormat string
	flagOutput string
	flagDate   string
	flagLog    string
)

// app bundles the wired pipeline for the command handlers.
type app struct {
	cfg      *config.Config
	store    *store.Postgres
	resolver *geo.Resolver
	lookup   *rates.Lookup
	afford   *affordability.Engine
	engine   *engine.Engine
	log      *logging.Logger
}

// newApp loads configuration and connects the rates store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(flagLog)
	if err != nil {
		return nil, err
	}

	st, err := store.NewPostgres(ctx, cfg.Database, cfg.BenefitLabels, log)
	if err != nil {
		return nil, err
	}

	resolver := geo.NewResolver(st, cfg.SingleRatingAreaStates, log)
	lookup := rates.NewLookup(st, cfg.FamilyTierStates)
	afford := affordability.NewEngine(st, cfg.Threshold())
	eng := engine.New(st, resolver, lookup, afford, cfg.Workers(), log)

	return &app{
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		lookup:   lookup,
		afford:   afford,
		engine:   eng,
		log:      log,
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

// effectiveDate resolves the --date override against the configured
// rate effective date.
func (a *app) effectiveDate() (time.Time, error) {
	if flagDate == "" {
		return a.cfg.RateEffectiveDate, nil
	}
	return time.Parse("2006-01-02", flagDate)
}

var rootCmd = &cobra.Command{
	Use:   "ichracalc",
	Short: "ICHRA rate lookup and affordability engine",
	Long:  "Resolves employer census rows against CMS marketplace rate tables: rating areas, household premiums, affordability safe harbors and plan comparisons.",
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [zip]",
	Short: "Resolve a ZIP code to its rating area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		county, _ := cmd.Flags().GetString("county")
		area, err := a.resolver.Resolve(ctx, args[0], county)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s rating area %d\n", args[0], area.StateCode, area.Number)
		return nil
	},
}

var censusCmd = &cobra.Command{
	Use:   "census [census-file]",
	Short: "Run the full pipeline over a census file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		batch, err := runCensus(ctx, a, args[0])
		if err != nil {
			return err
		}

		formatter, err := output.ForFormat(flagFormat)
		if err != nil {
			return err
		}
		rendered, err := formatter.Format(batch)
		if err != nil {
			return err
		}
		if flagOutput != "" {
			return os.WriteFile(flagOutput, rendered, 0o644)
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
}

func runCensus(ctx context.Context, a *app, censusPath string) (*engine.BatchResult, error) {
	input, err := config.LoadCensus(censusPath)
	if err != nil {
		return nil, err
	}
	effectiveDate, err := a.effectiveDate()
	if err != nil {
		return nil, err
	}
	return a.engine.Process(ctx, engine.Request{
		EffectiveDate:    effectiveDate,
		Households:       input.Households,
		CandidatePlanIDs: input.CandidatePlanIDs,
		Baseline:         input.Baseline,
	})
}

var lcspCmd = &cobra.Command{
	Use:   "lcsp",
	Short: "Find the lowest cost Silver plan for a rating area and age",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		state, _ := cmd.Flags().GetString("state")
		areaNum, _ := cmd.Flags().GetInt("area")
		age, _ := cmd.Flags().GetInt("age")
		if len(state) != 2 || areaNum < 1 {
			return fmt.Errorf("--state and --area are required")
		}
		effectiveDate, err := a.effectiveDate()
		if err != nil {
			return err
		}

		area := domain.RatingArea{StateCode: state, Number: areaNum}
		band := a.lookup.BandFor(state, age)
		result, err := a.afford.LowestCostSilver(ctx, area, band, effectiveDate)
		if err != nil {
			return err
		}
		fmt.Printf("LCSP for %s rating area %d, age band %q:\n", state, areaNum, band)
		fmt.Printf("  %s at %s/mo\n", result.PlanID, output.FormatCurrency(result.Premium))

		if income, _ := cmd.Flags().GetString("income"); income != "" {
			monthly, err := parseMoney(income)
			if err != nil {
				return fmt.Errorf("invalid --income: %w", err)
			}
			check := a.afford.Evaluate(result, result.Premium, monthly)
			fmt.Printf("  max employee contribution: %s/mo\n", output.FormatCurrency(check.MaxEmployeeContribution))
			fmt.Printf("  min employer contribution: %s/mo\n", output.FormatCurrency(check.MinEmployerContribution))
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [census-file]",
	Short: "Score candidate plans against the census baseline plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		input, err := config.LoadCensus(args[0])
		if err != nil {
			return err
		}
		if input.Baseline == nil {
			return fmt.Errorf("census file has no baseline plan to compare against")
		}
		if len(input.CandidatePlanIDs) == 0 {
			return fmt.Errorf("census file names no candidate plans")
		}

		set, err := compareCandidates(ctx, a, *input.Baseline, input.CandidatePlanIDs)
		if err != nil {
			return err
		}
		detail, _ := cmd.Flags().GetBool("detail")
		printComparison(set, detail)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		srv := server.New(a.cfg, a.store, a.resolver, a.lookup, a.afford, a.engine, a.log)
		return srv.Listen()
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse [census-file]",
	Short: "Browse census results interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		model := tui.NewModel(func() (*engine.BatchResult, error) {
			return runCensus(ctx, a, args[0])
		})
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|goto N|status]",
	Short: "Apply database migrations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cfg.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}

		m, err := migrate.New("file://migrations", cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer m.Close()

		switch args[0] {
		case "up":
			if err := m.Up(); err != nil && err != migrate.ErrNoChange {
				return err
			}
			fmt.Println("migrations applied")
		case "down":
			if err := m.Steps(-1); err != nil {
				return err
			}
			fmt.Println("rolled back one migration")
		case "goto":
			if len(args) < 2 {
				return fmt.Errorf("goto requires a version number")
			}
			v, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}
			if err := m.Migrate(uint(v)); err != nil && err != migrate.ErrNoChange {
				return err
			}
			fmt.Printf("migrated to version %d\n", v)
		case "status":
			v, dirty, err := m.Version()
			switch err {
			case nil:
				suffix := ""
				if dirty {
					suffix = " (dirty)"
				}
				fmt.Printf("version %d%s\n", v, suffix)
			case migrate.ErrNilVersion:
				fmt.Println("no migrations applied yet")
			default:
				return err
			}
		default:
			return fmt.Errorf("unknown migrate command %q", args[0])
		}
		return nil
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "ichracalc %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "prod", "logging mode (prod or dev)")

	resolveCmd.Flags().String("county", "", "county name hint for multi-county ZIPs")

	censusCmd.Flags().StringVar(&flagFormat, "format", "console", "output format (console, csv, json)")
	censusCmd.Flags().StringVar(&flagOutput, "output", "", "write output to file instead of stdout")
	censusCmd.Flags().StringVar(&flagDate, "date", "", "rate effective date override (YYYY-MM-DD)")

	lcspCmd.Flags().String("state", "", "2-letter state code")
	lcspCmd.Flags().Int("area", 0, "rating area number")
	lcspCmd.Flags().Int("age", 40, "employee age")
	lcspCmd.Flags().String("income", "", "monthly income for an affordability check")

	compareCmd.Flags().Bool("detail", false, "show per-attribute breakdown")

	rootCmd.AddCommand(resolveCmd, censusCmd, lcspCmd, compareCmd, serveCmd, browseCmd, migrateCmd, versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
