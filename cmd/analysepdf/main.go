package main

import (
	"context"
	"fmt"
	"os"

	"analysepdf/internal/batch"
	"analysepdf/internal/export"
	"analysepdf/internal/extractor"
	"analysepdf/internal/models"
	"analysepdf/internal/parser"
	"analysepdf/pkg/config"
	"analysepdf/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagInput  string
	flagOutput string
	flagJobs   int
	flagNoOCR  bool
)

var rootCmd = &cobra.Command{
	Use:   "analysepdf",
	Short: "Analyze Touch N Pay statement PDFs into a CSV export",
	Long: `analysepdf scans a directory of PDF statements, extracts text (direct
text layer first, OCR fallback second), parses the statement records and
writes a single CSV export. Failed files are listed in the final summary;
they never abort the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagInput, "input", "i", "", "input directory with .pdf files (default from ANALYSE_INPUT_DIR)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output CSV path (default from ANALYSE_OUTPUT_CSV)")
	rootCmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "number of files processed in parallel (default from ANALYSE_JOBS)")
	rootCmd.Flags().BoolVar(&flagNoOCR, "no-ocr", false, "disable the OCR fallback")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	inputDir := cfg.Input.Dir
	if flagInput != "" {
		inputDir = flagInput
	}
	outputPath := cfg.Input.OutputCSV
	if flagOutput != "" {
		outputPath = flagOutput
	}
	jobs := cfg.Input.Jobs
	if flagJobs > 0 {
		jobs = flagJobs
	}
	ocrEnabled := cfg.OCR.Enabled && !flagNoOCR

	strategies := []extractor.Strategy{extractor.NewTextLayerExtractor(appLogger)}
	if ocrEnabled {
		strategies = append(strategies, extractor.NewOCRExtractor(cfg.OCR.DPI, cfg.OCR.Languages, appLogger))
	}
	chain := extractor.NewChain(cfg.Parser.MinTextChars, appLogger, strategies...)

	runner := batch.NewRunner(
		chain,
		parser.NewStatementParser(appLogger),
		export.NewWriter(appLogger),
		jobs,
		cfg.Input.TempDir,
		appLogger,
	)

	summary, err := runner.Run(context.Background(), inputDir, outputPath)
	if err != nil {
		appLogger.Error("Run failed", zap.Error(err))
		return err
	}

	printSummary(cmd, summary)

	// Exit code policy: the run itself succeeded, but an empty or fully
	// failed batch is an operator error.
	if summary.TotalFiles() == 0 {
		return fmt.Errorf("no PDF files found in %s", inputDir)
	}
	if summary.Succeeded() == 0 {
		return fmt.Errorf("all %d files failed", summary.TotalFiles())
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary *models.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nPDF files analyzed: %d\n", summary.TotalFiles())
	fmt.Fprintf(out, "Succeeded: %d  Failed: %d  Records: %d\n",
		summary.Succeeded(), summary.Failed(), summary.TotalRecords())

	if failed := summary.FailedOutcomes(); len(failed) > 0 {
		fmt.Fprintln(out, "\nFailed files:")
		for _, o := range failed {
			fmt.Fprintf(out, "  %s: %s\n", o.Source.Name(), o.Reason)
		}
	}
	fmt.Fprintf(out, "\nExport: %s (updated %s)\n",
		summary.OutputPath, summary.FinishedAt.Format("02/01/2006 15:04:05"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
