// Package cli implements the linkcheck command-line interface.
// Commands are package-level cobra commands that register themselves on
// rootCmd and reach the core through driving ports set by SetServices.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// version is set at build time through SetVersion.
var version = "dev"

// Driving ports used by commands.
var (
	validationService driving.ValidationService
	settingsService   driving.SettingsService
	reportRegistry    *report.Registry
)

// Global flags.
var (
	verbose   bool
	configDir string
)

// ErrInvalidLinks is returned by commands that found invalid links, so the
// process exits non-zero.
var ErrInvalidLinks = errors.New("invalid links found")

// ErrCheckCancelled is returned when a check is stopped before it finished.
var ErrCheckCancelled = errors.New("check cancelled")

// Services holds the driving ports used by commands.
type Services struct {
	Validation driving.ValidationService
	Settings   driving.SettingsService
	Reports    *report.Registry

	// Close releases the resources behind the services. May be nil.
	Close func() error
}

// ServiceFactory builds services for a configuration directory.
// An empty dir selects the default location.
type ServiceFactory func(dir string) (*Services, error)

var (
	serviceFactory ServiceFactory
	closeServices  func() error
)

var rootCmd = &cobra.Command{
	Use:   "linkcheck",
	Short: "Validate the URLs embedded in files",
	Long: `linkcheck extracts every URL from CSV, TSV, XLSX, plain text, HTML and XML
files and reports the ones that are not well formed under the configured policy.

No network requests are made: links are checked for shape, not reachability.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.linkcheck)")

	// Finalizers run even when a command fails.
	cobra.OnFinalize(releaseServices)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the driving ports directly.
func SetServices(s *Services) {
	validationService = s.Validation
	settingsService = s.Settings
	reportRegistry = s.Reports
	closeServices = s.Close
}

// SetServiceFactory defers building services until flags are parsed,
// so --config-dir can select where settings and history live.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if validationService != nil || serviceFactory == nil {
		return nil
	}
	services, err := serviceFactory(configDir)
	if err != nil {
		return fmt.Errorf("initialise services: %w", err)
	}
	SetServices(services)
	return nil
}

func releaseServices() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("Failed to release services: %v", err)
	}
	closeServices = nil
}

func reports() *report.Registry {
	if reportRegistry == nil {
		reportRegistry = report.NewDefaultRegistry()
	}
	return reportRegistry
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
