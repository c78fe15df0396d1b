package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer at the given verbosity and restores
// the defaults when the test ends.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	assert.False(t, Enabled(LevelInfo))
	assert.True(t, Enabled(LevelWarn))

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.True(t, Enabled(LevelDebug))

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
}

func TestPackageLevelFunctions(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("test message %s", "arg") }, "[DEBUG] test message arg\n"},
		{"debug quiet", false, func() { Debug("test message") }, ""},
		{"info verbose", true, func() { Info("loaded %d", 3) }, "[INFO] loaded 3\n"},
		{"info quiet", false, func() { Info("loaded") }, ""},
		{"warn quiet", false, func() { Warn("careful") }, "[WARN] careful\n"},
		{"error quiet", false, func() { Error("failed: %v", "boom") }, "[ERROR] failed: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)

			tt.log()

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSetLevel(t *testing.T) {
	buf := capture(t, false)
	SetLevel(LevelError)

	Warn("hidden")
	Error("shown")

	assert.Equal(t, "[ERROR] shown\n", buf.String())
}

func TestRun(t *testing.T) {
	buf := capture(t, true)

	Run("0123456789abcdef").Info("started %s", "links.csv")
	Run("short").Warn("slow\n")

	assert.Equal(t, "[INFO] run 01234567: started links.csv\n[WARN] run short: slow\n", buf.String())
}

func TestRun_RespectsLevel(t *testing.T) {
	buf := capture(t, false)

	l := Run("abc")
	l.Debug("hidden")
	l.Info("hidden")
	l.Error("shown")

	assert.Equal(t, "[ERROR] run abc: shown\n", buf.String())
}
