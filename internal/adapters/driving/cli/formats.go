package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input and report formats",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("Input formats:")
		for _, f := range domain.AllFormats() {
			cmd.Printf("  %-12s %-30s %s\n", f, f.Description(), strings.Join(f.Extensions(), " "))
		}
		cmd.Println()
		cmd.Println("Report formats:")
		cmd.Printf("  %s\n", strings.Join(reports().Names(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
