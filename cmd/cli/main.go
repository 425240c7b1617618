package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"goagree/adapters/excel"
	"goagree/adapters/sqlstore"
	"goagree/adapters/stats/rba"
	"goagree/app"
	"goagree/domain/agreement"
	"goagree/domain/core"
	"goagree/internal"
	"goagree/internal/config"
	"goagree/internal/errors"
	"goagree/internal/report"
	"goagree/internal/server"
	"goagree/internal/synthetic"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
	internal.SetDefaultLogger(internal.NewLoggerWithWriter(os.Stderr, internal.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format))

	rootCmd := &cobra.Command{
		Use:           "goagree",
		Short:         "Repeated-measures Bland-Altman agreement between two measurement methods",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(cfg),
		newBatchCmd(cfg),
		newSimulateCmd(),
		newServeCmd(cfg),
		newHistoryCmd(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(errors.FromDomain(err)), err)
		os.Exit(errors.ExitCode(err))
	}
}

func addDataFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Data.ParticipantColumn, "participant-column", cfg.Data.ParticipantColumn, "Column holding participant identifiers")
	cmd.Flags().StringVar(&cfg.Data.Sheet, "sheet", cfg.Data.Sheet, "Worksheet to read from .xlsx files")
	cmd.Flags().StringVar(&cfg.Report.Format, "format", cfg.Report.Format, "Report format: text|json|markdown|html")
	cmd.Flags().StringVarP(&cfg.Report.Output, "output", "o", cfg.Report.Output, "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&cfg.Report.XLSX, "xlsx", cfg.Report.XLSX, "Also export the results to this .xlsx workbook")
	addStoreFlag(cmd, cfg)
}

func addStoreFlag(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Store.DSN, "store", cfg.Store.DSN, "Report database: a SQLite file or a postgres:// URL")
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [data-file]",
		Short: "Compute bias, SD and limits of agreement for one value column",
		Long: `Compute repeated-measures Bland-Altman statistics for a long-format file with
one row per observation: a participant column and a column of differences
between the two methods (.csv or .xlsx).

Without a data file (and without RBA_DATA_FILE) a seeded synthetic dataset is
analyzed instead.

Example: goagree analyze ankle.csv --value-column variables --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Data.File = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg)
		},
	}

	addDataFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.Data.ValueColumn, "value-column", cfg.Data.ValueColumn, "Column holding the differences")
	return cmd
}

func newBatchCmd(cfg *config.Config) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "batch [data-file]",
		Short: "Analyze several value columns of one file concurrently",
		Long: `Analyze every value column of a file (for example one column per joint angle)
against the same participant column. Without --value-columns every column other
than the participant column is analyzed.

Example: goagree batch joints.xlsx --value-columns ankle,knee,hip --xlsx results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Data.File = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBatch(cmd.Context(), cfg, columns)
		},
	}

	addDataFlags(cmd, cfg)
	cmd.Flags().StringSliceVar(&columns, "value-columns", nil, "Comma-separated value columns (default: all)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Columns analyzed in parallel")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	sim := synthetic.DefaultConfig()
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "simulate [out-file]",
		Short: "Write a synthetic repeated-measures dataset",
		Long: `Write a long-format dataset drawn from x = bias + b_i + e_ij with normal
between-participant (b_i) and within-participant (e_ij) effects.

Example: goagree simulate diffs.csv --participants 20 --min-repeats 5 --max-repeats 10 --points-per-repeat 101`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := synthetic.Generate(sim)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}
			out := args[0]
			if xlsx || strings.HasSuffix(strings.ToLower(out), ".xlsx") {
				err = synthetic.WriteXLSX(out, ds)
			} else {
				err = synthetic.WriteCSV(out, ds)
			}
			if err != nil {
				return errors.IOError("failed to write "+out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d observations for %d participants to %s (true SD %.4f)\n",
				ds.Len(), sim.Participants, out, sim.TotalSD())
			return nil
		},
	}

	cmd.Flags().IntVar(&sim.Participants, "participants", sim.Participants, "Number of participants")
	cmd.Flags().IntVar(&sim.MinRepeats, "min-repeats", sim.MinRepeats, "Minimum repeats per participant")
	cmd.Flags().IntVar(&sim.MaxRepeats, "max-repeats", sim.MaxRepeats, "Maximum repeats per participant")
	cmd.Flags().IntVar(&sim.PointsPerRepeat, "points-per-repeat", sim.PointsPerRepeat, "Rows written per repeat")
	cmd.Flags().Float64Var(&sim.Bias, "bias", sim.Bias, "Mean difference between methods")
	cmd.Flags().Float64Var(&sim.BetweenSD, "between-sd", sim.BetweenSD, "Between-participant SD")
	cmd.Flags().Float64Var(&sim.WithinSD, "within-sd", sim.WithinSD, "Within-participant SD")
	cmd.Flags().Uint64Var(&sim.Seed, "seed", sim.Seed, "Random seed")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an .xlsx workbook instead of CSV")
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agreement analysis over HTTP",
		Long: `Start an HTTP API:

  POST /api/analyze         JSON dataset in, report out (?format=text|json|markdown|html)
  GET  /api/reports         stored report headlines, newest first (?limit=N)
  GET  /api/reports/{id}    one stored report
  GET  /healthz

Reports are stored only when --store (or RBA_STORE_DSN) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			svc, closeStore, err := newService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return server.New(svc).ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "Listen address")
	addStoreFlag(cmd, cfg)
	return cmd
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List stored reports, or print one stored report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store.DSN == "" {
				return errors.ConfigInvalid("history needs --store or RBA_STORE_DSN")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			svc, closeStore, err := newService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if len(args) == 1 {
				rep, err := svc.Lookup(cmd.Context(), core.AnalysisID(args[0]))
				if err != nil {
					return err
				}
				return emit(cfg, []*agreement.Report{rep})
			}

			summaries, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range summaries {
				fmt.Fprintf(out, "%s  %s  %-30s m=%-3d N=%-5d bias=%.4f sd=%.4f LOA=[%.4f, %.4f]\n",
					s.ID, s.GeneratedAt, label(s.Source, s.Column), s.Participants, s.Observations,
					s.Bias, s.SD, s.LOALower, s.LOAUpper)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of reports to list (0 for all)")
	cmd.Flags().StringVar(&cfg.Report.Format, "format", cfg.Report.Format, "Format for a single report: text|json|markdown|html")
	addStoreFlag(cmd, cfg)
	return cmd
}

func label(source, column string) string {
	if column == "" {
		return source
	}
	return source + " [" + column + "]"
}

// newService builds the agreement service, attaching the report store when a
// DSN is configured. The returned func closes the store.
func newService(ctx context.Context, cfg *config.Config) (*app.AgreementService, func(), error) {
	svc := app.NewAgreementService(rba.NewAnalyzer(), cfg.Workers)
	if cfg.Store.DSN == "" {
		return svc, func() {}, nil
	}

	db, err := sqlstore.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	return svc.WithStore(sqlstore.NewReportRepository(db)), func() { db.Close() }, nil
}

func readerConfig(cfg *config.Config) excel.ReaderConfig {
	return excel.ReaderConfig{
		Sheet:             cfg.Data.Sheet,
		ParticipantColumn: cfg.Data.ParticipantColumn,
		ValueColumn:       cfg.Data.ValueColumn,
	}
}

func runAnalyze(ctx context.Context, cfg *config.Config) error {
	demo := synthetic.DefaultConfig()
	demo.Seed = cfg.Demo.Seed
	demo.Participants = cfg.Demo.Participants

	svc, closeStore, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rep, err := svc.Analyze(ctx, app.AnalyzeRequest{
		File:   cfg.Data.File,
		Reader: readerConfig(cfg),
		Demo:   demo,
	})
	if err != nil {
		return err
	}
	return emit(cfg, []*agreement.Report{rep})
}

func runBatch(ctx context.Context, cfg *config.Config, columns []string) error {
	svc, closeStore, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reports, err := svc.AnalyzeColumns(ctx, cfg.Data.File, readerConfig(cfg), columns)
	if err != nil {
		return err
	}
	return emit(cfg, reports)
}

func emit(cfg *config.Config, reports []*agreement.Report) error {
	var w io.Writer = os.Stdout
	if cfg.Report.Output != "" {
		f, err := os.Create(cfg.Report.Output)
		if err != nil {
			return errors.IOError("failed to create report file", err)
		}
		defer f.Close()
		w = f
	}

	if err := report.Render(w, cfg.Report.Format, reports); err != nil {
		return errors.IOError("failed to write report", err)
	}

	if cfg.Report.XLSX != "" {
		if err := excel.WriteReportWorkbook(cfg.Report.XLSX, reports); err != nil {
			return err
		}
		internal.DefaultLogger.Info("results exported to %s", cfg.Report.XLSX)
	}
	return nil
}
