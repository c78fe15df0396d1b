package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

func TestCheckCmd_Use(t *testing.T) {
	assert.Equal(t, "check [file]", checkCmd.Use)
	assert.Equal(t, "Check every URL in a file", checkCmd.Short)
}

func TestCheckCmd_Flags(t *testing.T) {
	for _, name := range []string{
		"format", "schemes", "allow-localhost", "allow-ip", "allow-internal",
		"max-rows", "max-columns", "max-size-mb", "output", "report", "watch",
	} {
		assert.NotNil(t, checkCmd.Flags().Lookup(name), "missing flag %q", name)
	}
}

func TestCheckCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute("check")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCheckCmd_TextReport(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.txt", "https://example.com\nftp://files.example\n")

	out, err := execute("check", path)

	assert.ErrorIs(t, err, ErrInvalidLinks)
	assert.Contains(t, out, "Validation Results")
	assert.Contains(t, out, "Total links found: 2")
	assert.Contains(t, out, "ftp://files.example  [disallowed_scheme] line 2")
}

func TestCheckCmd_AllValid(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.txt", "https://example.com\nftp://files.example\n")

	out, err := execute("check", path, "--schemes", "https,ftp")

	assert.NoError(t, err)
	assert.Contains(t, out, "No invalid links found!")
}

func TestCheckCmd_PolicyFlags(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.txt", "http://localhost:8080\nhttp://10.0.0.1\nhttp://intranet\n")

	out, err := execute("check", path, "--allow-localhost=false", "--allow-ip=false", "--allow-internal=false")

	assert.ErrorIs(t, err, ErrInvalidLinks)
	assert.Contains(t, out, "Invalid links:     3")
	assert.Contains(t, out, "[ip_literal_disallowed]")
	assert.Contains(t, out, "[internal_host_disallowed]")
}

func TestCheckCmd_JSONReport(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.csv", "https://a.example,nope\nhttps://b.example,\n")

	out, err := execute("check", path, "--report", "json")

	assert.ErrorIs(t, err, ErrInvalidLinks)

	// The error line follows the JSON document.
	var doc struct {
		Format  string `json:"format"`
		Summary struct {
			Processed int `json:"processed"`
			Invalid   int `json:"invalid"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(bytesReader(out)).Decode(&doc))
	assert.Equal(t, "delimited", doc.Format)
	assert.Equal(t, 3, doc.Summary.Processed)
	assert.Equal(t, 1, doc.Summary.Invalid)
}

func TestCheckCmd_OutputFile(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.txt", "https://example.com\n")
	output := filepath.Join(t.TempDir(), "report.csv")

	out, err := execute("check", path, "--output", output)

	require.NoError(t, err)
	assert.Contains(t, out, "Checked ")
	assert.Contains(t, out, "1 links, 1 valid, 0 invalid")
	assert.Contains(t, out, "Report written to "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "seq,raw,reason")
}

func TestCheckCmd_MaxRows(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.csv", "https://a.example\nhttps://b.example\nhttps://c.example\n")

	out, err := execute("check", path, "--max-rows", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Total links found: 2")
	assert.Contains(t, out, "Stopped early")
}

func TestCheckCmd_Failures(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{"check", filepath.Join(t.TempDir(), "none.csv")}
			},
			want: "could not be found",
		},
		{
			name: "too large",
			args: func(t *testing.T) []string {
				return []string{"check", writeFile(t, "big.txt", "https://example.com\n"), "--max-size-mb", "0"}
			},
			want: "",
		},
		{
			name: "unknown format",
			args: func(t *testing.T) []string {
				return []string{"check", writeFile(t, "a.txt", "x"), "--format", "pdf"}
			},
			want: "unknown format",
		},
		{
			name: "unknown report",
			args: func(t *testing.T) []string {
				return []string{"check", writeFile(t, "a.txt", "x"), "--report", "pdf"}
			},
			want: "report format",
		},
		{
			name: "empty schemes",
			args: func(t *testing.T) []string {
				return []string{"check", writeFile(t, "a.txt", "x"), "--schemes", " , "}
			},
			want: "at least one scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)

			_, err := execute(tt.args(t)...)

			if tt.want == "" {
				// --max-size-mb 0 disables the size check.
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckCmd_StoresHistory(t *testing.T) {
	setupTestServices(t)
	path := writeFile(t, "links.txt", "https://example.com\n")

	_, err := execute("check", path)
	require.NoError(t, err)

	runs, err := validationService.History(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunCompleted, runs[0].Status)
}

func TestResultError(t *testing.T) {
	tests := []struct {
		name    string
		result  domain.RunResult
		want    error
		wantMsg string
	}{
		{"completed clean", domain.RunResult{Status: domain.RunCompleted}, nil, ""},
		{"completed with invalid", domain.RunResult{Status: domain.RunCompleted, Invalid: 2}, ErrInvalidLinks, ""},
		{"cancelled clean", domain.RunResult{Status: domain.RunCancelled}, ErrCheckCancelled, ""},
		{"cancelled with invalid", domain.RunResult{Status: domain.RunCancelled, Invalid: 1}, ErrCheckCancelled, ""},
		{"failed", domain.RunResult{Status: domain.RunFailed, Message: "file too large"}, nil, "check failed: file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resultError(&tt.result)

			switch {
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
			case tt.want != nil:
				assert.ErrorIs(t, err, tt.want)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
