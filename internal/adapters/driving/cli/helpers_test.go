package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/services"
	"github.com/custodia-labs/linkcheck/internal/encoding"
	"github.com/custodia-labs/linkcheck/internal/extractors"
	"github.com/custodia-labs/linkcheck/internal/validator"
)

// setupTestServices wires real services over a temporary config directory
// and an in-memory run store.
func setupTestServices(t *testing.T) {
	t.Helper()

	SetServices(newTestServices(t))
	t.Cleanup(func() {
		SetServices(&Services{})
	})
}

func newTestServices(t *testing.T) *Services {
	t.Helper()

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	settings.Progress.MinInterval = 0

	return &Services{
		Validation: services.NewValidationService(
			extractors.NewDefaultRegistry(encoding.NewResolver()),
			validator.New(),
			memory.NewRunStore(),
			settings,
		),
		Settings: services.NewSettingsService(store),
		Reports:  report.NewDefaultRegistry(),
	}
}

// execute runs the root command with args and returns everything it printed.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default, since commands and their
// flag variables are package-level and shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func bytesReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}
