package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

var settingsResetYes bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the validation policy, resource limits, progress pacing and
history retention used by every check.

Flags given to 'linkcheck check' override these settings for one run.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting. Keys:

  validation.allowed_schemes        comma-separated list, e.g. http,https
  validation.allow_localhost        true or false
  validation.allow_ip_addresses     true or false
  validation.allow_internal_domains true or false
  limits.max_file_size_mb           whole number, 0 disables the check
  limits.max_rows                   whole number, 0 means unlimited
  limits.max_columns                whole number, 0 means unlimited
  limits.max_invalid_records        whole number
  limits.timeout                    duration, e.g. 5m
  progress.min_interval             duration, e.g. 100ms
  progress.max_interval             duration, e.g. 2s
  history.enabled                   true or false
  history.keep                      whole number`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE:  runSettingsReset,
}

func init() {
	settingsResetCmd.Flags().BoolVarP(&settingsResetYes, "yes", "y", false, "do not ask for confirmation")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Validation policy
	cmd.Println("[Validation]")
	cmd.Printf("  Allowed schemes: %s\n", strings.Join(settings.Policy.AllowedSchemes, ", "))
	cmd.Printf("  Localhost: %s\n", allowed(settings.Policy.AllowLocalhost))
	cmd.Printf("  IP addresses: %s\n", allowed(settings.Policy.AllowIPLiterals))
	cmd.Printf("  Internal domains: %s\n", allowed(settings.Policy.AllowInternalDomains))
	cmd.Println()

	// Limits
	cmd.Println("[Limits]")
	cmd.Printf("  Max file size: %s\n", limitOrNone(settings.Limits.MaxFileSize > 0, report.FormatFileSize(settings.Limits.MaxFileSize)))
	cmd.Printf("  Max rows: %s\n", limitOrNone(settings.Limits.MaxRows > 0, fmt.Sprint(settings.Limits.MaxRows)))
	cmd.Printf("  Max columns: %s\n", limitOrNone(settings.Limits.MaxColumns > 0, fmt.Sprint(settings.Limits.MaxColumns)))
	cmd.Printf("  Invalid links kept: %d\n", settings.Limits.MaxInvalidRecords)
	cmd.Printf("  Timeout: %s\n", limitOrNone(settings.Limits.Timeout > 0, settings.Limits.Timeout.String()))
	cmd.Println()

	// Progress
	cmd.Println("[Progress]")
	cmd.Printf("  Interval: %s to %s\n", settings.Progress.MinInterval, settings.Progress.MaxInterval)
	cmd.Println()

	// History
	cmd.Println("[History]")
	if settings.History.Enabled {
		cmd.Printf("  Enabled: yes, keeping %d runs\n", settings.History.Keep)
	} else {
		cmd.Println("  Enabled: no")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'linkcheck settings reset' to restore defaults.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w (see 'linkcheck settings set --help')", err)
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if !settingsResetYes {
		cmd.Print("Reset all settings to defaults? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func allowed(b bool) string {
	if b {
		return "allowed"
	}
	return "rejected"
}

func limitOrNone(set bool, value string) string {
	if !set {
		return "none"
	}
	return value
}
