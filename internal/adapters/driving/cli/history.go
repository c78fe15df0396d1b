package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

var (
	historyLimit  int
	historyReport string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past checks",
	Long:  `List, inspect and clear the checks stored in run history.`,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent checks",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the report of a past check",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored checks",
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list")
	historyShowCmd.Flags().StringVarP(&historyReport, "report", "r", "text", "report format: text, csv, json, yaml or xlsx")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	runs, err := validationService.History(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No checks in history.")
		return nil
	}

	cmd.Println("Recent checks:")
	cmd.Println()
	for i := range runs {
		r := &runs[i]
		// Format: [id] source - status (processed/valid/invalid)
		cmd.Printf("  [%s] %s - %s\n", r.RunID, r.Source, r.Status)
		cmd.Printf("      %s, %d links: %d valid, %d invalid\n",
			r.StartedAt.Local().Format(time.DateTime), r.TotalProcessed, r.Valid, r.Invalid)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	writer, err := reports().Get(historyReport)
	if err != nil {
		return err
	}

	result, err := validationService.GetRun(context.Background(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	return writer.Write(cmd.OutOrStdout(), result)
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	n, err := validationService.ClearHistory(context.Background())
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Printf("Removed %d checks from history.\n", n)
	return nil
}
