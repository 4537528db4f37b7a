package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"abtest/internal"
	"abtest/internal/bidding"
	"abtest/internal/config"
	"abtest/internal/container"
	"abtest/internal/errors"
	"abtest/internal/report"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file when present
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "abtest",
		Short:         "Compare two A/B test groups with an assumption-checked hypothesis test",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDescribeCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

// inputFlags are the flags shared by run and describe
type inputFlags struct {
	metric       string
	controlSheet string
	testSheet    string
	format       string
	precision    int
	maxRows      int
	color        bool
	output       string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().StringVar(&f.metric, "metric", def.Data.Metric, "Column compared between the groups")
	cmd.Flags().StringVar(&f.controlSheet, "control-sheet", def.Data.ControlSheet, "Sheet holding the control group")
	cmd.Flags().StringVar(&f.testSheet, "test-sheet", def.Data.TestSheet, "Sheet holding the test group")
	cmd.Flags().StringVar(&f.format, "format", def.Output.Format, "Report format: text|markdown|html")
	cmd.Flags().IntVar(&f.precision, "precision", def.Output.Precision, "Decimals shown for statistics and p-values")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", def.Output.MaxRows, "Rows shown in head and tail excerpts")
	cmd.Flags().BoolVar(&f.color, "color", def.Output.Color, "Colour verdicts in text output")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to a file instead of stdout")
}

// apply overlays explicitly set flags and positional inputs on the environment config
func (f *inputFlags) apply(cmd *cobra.Command, args []string, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("metric") {
		cfg.Data.Metric = f.metric
	}
	if flags.Changed("control-sheet") {
		cfg.Data.ControlSheet = f.controlSheet
	}
	if flags.Changed("test-sheet") {
		cfg.Data.TestSheet = f.testSheet
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(f.format)
	}
	if flags.Changed("precision") {
		cfg.Output.Precision = f.precision
	}
	if flags.Changed("max-rows") {
		cfg.Output.MaxRows = f.maxRows
	}
	if flags.Changed("color") {
		cfg.Output.Color = f.color
	}

	switch len(args) {
	case 1:
		cfg.Data.Workbook = args[0]
		cfg.Data.TestWorkbook = ""
	case 2:
		cfg.Data.Workbook = args[0]
		cfg.Data.TestWorkbook = args[1]
	}
}

func newRunCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "run [workbook | control.csv test.csv]",
		Short: "Check assumptions and test whether the groups differ",
		Long: `Load the control and test groups, summarise them, check normality
(Shapiro-Wilk) and variance homogeneity (Levene), then run a two-sample
t-test when both hold or a Mann-Whitney U test otherwise.

Configuration is read from the environment (and a .env file):
- ABTEST_WORKBOOK, ABTEST_TEST_WORKBOOK
- ABTEST_CONTROL_SHEET (default: Control Group)
- ABTEST_TEST_SHEET (default: Test Group)
- ABTEST_METRIC (default: Purchase)
- ABTEST_FORMAT, ABTEST_PRECISION, ABTEST_MAX_ROWS, ABTEST_COLOR
- LOG_LEVEL (default: INFO)

Example: abtest run ab_testing.xlsx --metric Purchase`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, &flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "describe [workbook | control.csv test.csv]",
		Short: "Summarise both groups without running any test",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, &flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func runReport(cmd *cobra.Command, args []string, flags *inputFlags, test bool) error {
	// container.New validates once flags are applied
	cfg := config.FromEnv()
	flags.apply(cmd, args, cfg)

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	c, err := container.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var r *report.Report
	if test {
		r, err = c.Service.Run(ctx)
	} else {
		r, err = c.Service.Describe(ctx)
	}
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), flags.output, c.Renderer, r)
}

func writeReport(stdout io.Writer, path string, renderer report.Renderer, r *report.Report) error {
	if path == "" {
		return renderer.Render(stdout, r)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	if err := renderer.Render(f, r); err != nil {
		return errors.Wrapf(err, "failed to write report to %s", path)
	}
	color.New(color.FgGreen).Fprintf(stdout, "Wrote report %s\n", path)
	return nil
}

func newGenerateCmd() *cobra.Command {
	var seed int64
	var rows int
	var format string

	cmd := &cobra.Command{
		Use:   "generate [out]",
		Short: "Write a synthetic bidding campaign with control and test groups",
		Long: `Write a deterministic synthetic campaign with Impression, Click, Purchase
and Earning columns for a control (maximum bidding) and a test (average
bidding) group.

xlsx output puts both groups in one workbook. csv output writes
<name>_control.csv and <name>_test.csv.

Example: abtest generate ab_testing.xlsx --seed 42 --rows 40`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := "ab_testing.xlsx"
			if len(args) == 1 {
				out = args[0]
			}
			return runGenerate(cmd.OutOrStdout(), out, format, seed, rows)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().IntVar(&rows, "rows", 40, "Rows (days) per group")
	cmd.Flags().StringVar(&format, "format", "", "Output format: xlsx|csv (default inferred from the file name)")
	return cmd
}

func runGenerate(w io.Writer, out, format string, seed int64, rows int) error {
	fmtName := strings.ToLower(strings.TrimSpace(format))
	if fmtName == "" {
		fmtName = "xlsx"
		if strings.ToLower(filepath.Ext(out)) == ".csv" {
			fmtName = "csv"
		}
	}

	cfg := bidding.DefaultConfig()
	cfg.Seed = seed
	cfg.Rows = rows

	control, test, err := bidding.Generate(cfg)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	switch fmtName {
	case "xlsx":
		if err := bidding.WriteXLSX(out, control, test); err != nil {
			return err
		}
		green.Fprintf(w, "Wrote %s\n", out)
	case "csv":
		base := strings.TrimSuffix(out, filepath.Ext(out))
		controlPath, testPath := base+"_control.csv", base+"_test.csv"
		if err := bidding.WriteCSV(controlPath, control); err != nil {
			return err
		}
		if err := bidding.WriteCSV(testPath, test); err != nil {
			return err
		}
		green.Fprintf(w, "Wrote %s and %s\n", controlPath, testPath)
	default:
		return errors.InvalidInput("unsupported format: " + fmtName)
	}

	fmt.Fprintf(w, "Columns: %d | Rows per group: %d | Seed: %d\n", len(bidding.Headers), cfg.Rows, cfg.Seed)
	return nil
}
