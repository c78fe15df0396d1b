package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/source"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// terminalListLimit caps the invalid links printed to a terminal.
const terminalListLimit = 50

var (
	checkFormat     string
	checkMaxRows    int
	checkMaxColumns int
	checkMaxSizeMB  int
	checkOutput     string
	checkReport     string
	checkWatch      bool
	checkPolicy     policyFlags
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check every URL in a file",
	Long: `Extracts URLs from a file and reports the ones that are not well formed.

Supported inputs are CSV and TSV, XLSX workbooks, plain text with one URL
per line, and HTML or XML documents. The format is detected from the file
name and content unless --format is given.

Press Ctrl-C to cancel a running check. With --watch the file is checked
again each time it changes.

Examples:
  linkcheck check links.csv
  linkcheck check export.xlsx --max-rows 1000 --report json
  linkcheck check page.html --schemes https --output report.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "", "force the input format: csv, xlsx, text or html")
	checkCmd.Flags().IntVar(&checkMaxRows, "max-rows", 0, "stop after this many rows in tabular files (default from settings)")
	checkCmd.Flags().IntVar(&checkMaxColumns, "max-columns", 0, "read at most this many columns per row (default from settings)")
	checkCmd.Flags().IntVar(&checkMaxSizeMB, "max-size-mb", 0, "reject files larger than this (default from settings)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "write the report to a file instead of stdout")
	checkCmd.Flags().StringVarP(&checkReport, "report", "r", "", "report format: text, csv, json, yaml or xlsx")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "check again whenever the file changes")
	checkPolicy.register(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	if validationService == nil {
		return errors.New("validation service not configured")
	}

	// 1. Build the request from settings and flags
	req, err := checkRequest(cmd, path)
	if err != nil {
		return err
	}
	writer, err := checkWriter(cmd)
	if err != nil {
		return err
	}

	// 2. Ctrl-C cancels the run rather than killing the process
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !checkWatch {
		return checkOnce(ctx, cmd, req, writer)
	}
	return watchFile(ctx, cmd, path, req, writer)
}

func checkRequest(cmd *cobra.Command, path string) (driving.SubmitRequest, error) {
	settings, err := currentSettings()
	if err != nil {
		return driving.SubmitRequest{}, err
	}

	policy, err := checkPolicy.resolve(cmd, settings.Policy)
	if err != nil {
		return driving.SubmitRequest{}, err
	}

	limits := settings.Limits
	flags := cmd.Flags()
	if flags.Changed("max-rows") {
		limits.MaxRows = checkMaxRows
	}
	if flags.Changed("max-columns") {
		limits.MaxColumns = checkMaxColumns
	}
	if flags.Changed("max-size-mb") {
		limits.MaxFileSize = int64(checkMaxSizeMB) * 1024 * 1024
	}

	format := domain.ParseFormat(checkFormat)
	if checkFormat != "" && format == domain.FormatUnknown {
		return driving.SubmitRequest{}, fmt.Errorf("%w: unknown format %q (run 'linkcheck formats')", domain.ErrInvalidInput, checkFormat)
	}

	return driving.SubmitRequest{
		Source:     source.NewFile(path),
		FormatHint: format,
		Policy:     policy,
		Limits:     limits,
	}, nil
}

// checkWriter picks the report writer: --report wins, then the --output
// extension, then styled text on a terminal.
func checkWriter(cmd *cobra.Command) (driven.ReportWriter, error) {
	registry := reports()
	switch {
	case checkReport != "":
		return registry.Get(checkReport)
	case checkOutput != "":
		return registry.ForPath(checkOutput), nil
	case isTerminal(cmd.OutOrStdout()):
		return report.NewText(
			report.WithStyles(report.DefaultStyles()),
			report.WithListLimit(terminalListLimit),
		), nil
	default:
		return registry.Get("text")
	}
}

// checkOnce runs one check to completion and writes its report.
func checkOnce(ctx context.Context, cmd *cobra.Command, req driving.SubmitRequest, writer driven.ReportWriter) error {
	h, err := validationService.Submit(ctx, req)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	logger.Debug("Submitted run %s", h.ID())

	progressDone := showProgress(cmd, h)

	select {
	case <-h.Done():
	case <-ctx.Done():
		cmd.PrintErrln("\nCancelling...")
		h.Cancel()
	}

	result, err := h.Wait(context.WithoutCancel(ctx))
	<-progressDone
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := writeReport(cmd, writer, result); err != nil {
		return err
	}

	return resultError(result)
}

// resultError maps a finished run to the command's exit error.
func resultError(result *domain.RunResult) error {
	switch {
	case result.Status == domain.RunFailed:
		return fmt.Errorf("check failed: %s", result.Message)
	case result.Status == domain.RunCancelled:
		return ErrCheckCancelled
	case result.Invalid > 0:
		return ErrInvalidLinks
	default:
		return nil
	}
}

func writeReport(cmd *cobra.Command, writer driven.ReportWriter, result *domain.RunResult) error {
	if checkOutput == "" {
		return writer.Write(cmd.OutOrStdout(), result)
	}

	f, err := os.Create(checkOutput)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := writer.Write(f, result); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	cmd.Printf("Checked %s: %d links, %d valid, %d invalid (%s)\n",
		result.Source, result.TotalProcessed, result.Valid, result.Invalid, result.Status)
	cmd.Printf("Report written to %s\n", checkOutput)
	return nil
}

// showProgress prints progress on stderr while the run is active, when
// stderr is a terminal. The returned channel is closed once the final
// event has been seen.
func showProgress(cmd *cobra.Command, h driving.RunHandle) <-chan struct{} {
	done := make(chan struct{})
	events := h.Subscribe()
	out := cmd.ErrOrStderr()
	live := isTerminal(out)

	go func() {
		defer close(done)
		for e := range events {
			if !live {
				continue
			}
			printProgress(out, e)
		}
	}()
	return done
}

func printProgress(out io.Writer, e domain.ProgressEvent) {
	if e.Final {
		fmt.Fprint(out, "\r\033[K")
		return
	}
	line := fmt.Sprintf("Processed %d (%d valid, %d invalid)", e.Processed, e.Valid, e.Invalid)
	if e.TotalEstimate > 0 {
		line += fmt.Sprintf(" of about %d", e.TotalEstimate)
	}
	if e.Rate > 0 {
		line += fmt.Sprintf(", %.0f/s", e.Rate)
	}
	fmt.Fprintf(out, "\r\033[K%s", line)
}

// watchFile checks the file now and again after every change until ctx ends.
func watchFile(ctx context.Context, cmd *cobra.Command, path string, req driving.SubmitRequest, writer driven.ReportWriter) error {
	changes, err := source.NewWatcher(path, source.DefaultDebounce).Watch(ctx)
	if err != nil {
		return err
	}

	recheck := func() {
		err := checkOnce(ctx, cmd, req, writer)
		if err != nil && !errors.Is(err, ErrInvalidLinks) && !errors.Is(err, ErrCheckCancelled) {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}

	recheck()
	cmd.PrintErrf("Watching %s for changes (Ctrl-C to stop)\n", path)
	for range changes {
		cmd.PrintErrln("Change detected, checking again...")
		recheck()
	}
	return nil
}
