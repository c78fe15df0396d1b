package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/source"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
	"github.com/custodia-labs/linkcheck/internal/encoding"
	"github.com/custodia-labs/linkcheck/internal/extractors"
	"github.com/custodia-labs/linkcheck/internal/validator"
)

// --- Mock implementations for validation testing ---

// gatedStream yields one candidate per value sent on feed and ends when
// feed is closed. It honours ctx while waiting.
type gatedStream struct {
	feed    chan string
	err     chan error
	line    int
	skipped int
	closed  atomic.Bool
}

func newGatedStream() *gatedStream {
	return &gatedStream{
		feed: make(chan string),
		err:  make(chan error),
	}
}

func (s *gatedStream) Next(ctx context.Context) (domain.Candidate, error) {
	select {
	case raw, ok := <-s.feed:
		if !ok {
			return domain.Candidate{}, io.EOF
		}
		s.line++
		return domain.Candidate{Raw: raw, Location: domain.LineAt(s.line)}, nil
	case err := <-s.err:
		return domain.Candidate{}, err
	case <-ctx.Done():
		return domain.Candidate{}, ctx.Err()
	}
}

func (s *gatedStream) Stats() driven.ExtractStats {
	return driven.ExtractStats{Skipped: s.skipped}
}

func (s *gatedStream) Close() error {
	s.closed.Store(true)
	return nil
}

// mockExtractor hands out a prepared stream.
type mockExtractor struct {
	stream  driven.CandidateStream
	openErr error
}

func (m *mockExtractor) Format() domain.Format { return domain.FormatPlainText }
func (m *mockExtractor) Priority() int         { return 50 }
func (m *mockExtractor) Open(context.Context, domain.SourceDescriptor, domain.Limits) (driven.CandidateStream, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.stream, nil
}

func testSettings() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Progress.MinInterval = 0
	return settings
}

func newTestService(t *testing.T, registry driven.ExtractorRegistry) (*ValidationService, *memory.RunStore) {
	t.Helper()
	store := memory.NewRunStore()
	return NewValidationService(registry, validator.New(), store, testSettings()), store
}

func newRealService(t *testing.T) (*ValidationService, *memory.RunStore) {
	t.Helper()
	return newTestService(t, extractors.NewDefaultRegistry(encoding.NewResolver()))
}

func newMockService(t *testing.T, stream driven.CandidateStream) *ValidationService {
	t.Helper()
	registry := extractors.NewRegistry()
	registry.Register(&mockExtractor{stream: stream})
	svc, _ := newTestService(t, registry)
	return svc
}

func submit(t *testing.T, svc *ValidationService, src domain.SourceDescriptor, limits domain.Limits) driving.RunHandle {
	t.Helper()
	h, err := svc.Submit(context.Background(), driving.SubmitRequest{
		Source: src,
		Policy: domain.DefaultValidationPolicy(),
		Limits: limits,
	})
	require.NoError(t, err)
	return h
}

func wait(t *testing.T, h driving.RunHandle) *domain.RunResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := h.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func assertCountsConsistent(t *testing.T, r *domain.RunResult) {
	t.Helper()
	assert.Equal(t, r.TotalProcessed, r.Valid+r.Invalid, "valid + invalid must equal processed")
}

// --- Tests ---

func TestValidationService_PlainTextRun(t *testing.T) {
	svc, _ := newRealService(t)
	src := source.NewString("links.txt", "http://example.com\n\nftp://example.com\nnot-a-url\n")

	result := wait(t, submit(t, svc, src, domain.DefaultLimits()))

	assert.Equal(t, domain.RunCompleted, result.Status)
	assert.Equal(t, domain.CodeCompleted, result.Code)
	assert.Equal(t, domain.FormatPlainText, result.Format)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Valid)
	assert.Equal(t, 2, result.Invalid)
	assertCountsConsistent(t, result)

	require.Len(t, result.InvalidRecords, 2)
	assert.Equal(t, domain.ReasonDisallowedScheme, result.InvalidRecords[0].Reason)
	assert.Equal(t, 3, result.InvalidRecords[0].Candidate.Location.Line)
	assert.Equal(t, domain.ReasonMissingScheme, result.InvalidRecords[1].Reason)
	assert.Equal(t, 4, result.InvalidRecords[1].Candidate.Location.Line)
}

func TestValidationService_MarkupRun(t *testing.T) {
	svc, _ := newRealService(t)
	src := source.NewString("page.html", `<a href="http://a.com"><img src="bad"></a>`)

	result := wait(t, submit(t, svc, src, domain.DefaultLimits()))

	assert.Equal(t, domain.RunCompleted, result.Status)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.Valid)
	require.Len(t, result.InvalidRecords, 1)

	rec := result.InvalidRecords[0]
	assert.Equal(t, "bad", rec.Candidate.Raw)
	assert.Equal(t, domain.ReasonMissingScheme, rec.Reason)
	assert.Equal(t, domain.MarkupAt("img", "src", 1), rec.Candidate.Location)
}

func TestValidationService_SpreadsheetTruncation(t *testing.T) {
	f := excelize.NewFile()
	for row := 1; row <= 30; row++ {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), fmt.Sprintf("https://host%d.example", row)))
	}
	path := filepath.Join(t.TempDir(), "links.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	svc, _ := newRealService(t)
	limits := domain.DefaultLimits()
	limits.MaxRows = 10

	result := wait(t, submit(t, svc, source.NewFile(path), limits))

	assert.Equal(t, domain.RunCompleted, result.Status)
	assert.Equal(t, domain.FormatSpreadsheet, result.Format)
	assert.True(t, result.Truncated)
	assert.Equal(t, 10, result.TotalProcessed)
	assert.Equal(t, 10, result.Valid)
	assertCountsConsistent(t, result)
}

func TestValidationService_PreflightFailures(t *testing.T) {
	tests := []struct {
		name   string
		src    domain.SourceDescriptor
		limits func(*domain.Limits)
		code   domain.Code
	}{
		{
			name: "missing file",
			src:  source.NewFile(filepath.Join(t.TempDir(), "missing.csv")),
			code: domain.CodeFileNotFound,
		},
		{
			name: "empty source",
			src:  source.NewString("links.txt", ""),
			code: domain.CodeFileEmpty,
		},
		{
			name:   "too large",
			src:    source.NewString("links.txt", "https://example.com\n"),
			limits: func(l *domain.Limits) { l.MaxFileSize = 5 },
			code:   domain.CodeFileTooLarge,
		},
		{
			name: "unsupported format",
			src:  source.NewBytes("data.bin", []byte{0x00, 0x01, 0x02}),
			code: domain.CodeUnsupportedFormat,
		},
		{
			name: "legacy workbook",
			src:  source.NewBytes("old.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}),
			code: domain.CodeFormatError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newRealService(t)
			limits := domain.DefaultLimits()
			if tt.limits != nil {
				tt.limits(&limits)
			}

			result := wait(t, submit(t, svc, tt.src, limits))

			assert.Equal(t, domain.RunFailed, result.Status)
			assert.Equal(t, tt.code, result.Code)
			assert.NotEmpty(t, result.Message)
			assert.Equal(t, 0, result.TotalProcessed)
		})
	}
}

func TestValidationService_SubmitRejectsMalformedRequest(t *testing.T) {
	svc, _ := newRealService(t)

	_, err := svc.Submit(context.Background(), driving.SubmitRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Submit(context.Background(), driving.SubmitRequest{
		Source:     source.NewString("a.txt", "x"),
		FormatHint: domain.Format("pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidationService_FormatHintOverridesDetection(t *testing.T) {
	svc, _ := newRealService(t)
	h, err := svc.Submit(context.Background(), driving.SubmitRequest{
		Source:     source.NewString("links.csv", "https://a.example,https://b.example\n"),
		FormatHint: domain.FormatPlainText,
	})
	require.NoError(t, err)

	result := wait(t, h)
	assert.Equal(t, domain.FormatPlainText, result.Format)
	assert.Equal(t, 1, result.TotalProcessed)
}

func TestValidationService_EmptyRequestUsesSettings(t *testing.T) {
	registry := extractors.NewDefaultRegistry(encoding.NewResolver())
	settings := testSettings()
	settings.Policy.AllowedSchemes = []string{"ftp"}
	svc := NewValidationService(registry, validator.New(), nil, settings)

	h, err := svc.Submit(context.Background(), driving.SubmitRequest{
		Source: source.NewString("links.txt", "ftp://files.example\n"),
	})
	require.NoError(t, err)

	result := wait(t, h)
	assert.Equal(t, 1, result.Valid)
}

func TestValidationService_CancelIsPrompt(t *testing.T) {
	stream := newGatedStream()
	svc := newMockService(t, stream)
	h := submit(t, svc, source.NewString("links.txt", "x"), domain.DefaultLimits())

	for i := 0; i < 10; i++ {
		stream.feed <- fmt.Sprintf("https://host%d.example", i)
	}
	require.Eventually(t, func() bool { return h.Snapshot().Processed == 10 }, 2*time.Second, time.Millisecond)

	h.Cancel()
	h.Cancel()

	result := wait(t, h)
	assert.Equal(t, domain.RunCancelled, result.Status)
	assert.Equal(t, domain.CodeCancelled, result.Code)
	assert.LessOrEqual(t, result.TotalProcessed, 11)
	assert.GreaterOrEqual(t, result.TotalProcessed, 10)
	assertCountsConsistent(t, result)
	assert.Eventually(t, stream.closed.Load, time.Second, time.Millisecond)

	// Counts never move after the terminal state.
	assert.Equal(t, result.TotalProcessed, h.Snapshot().Processed)
	assert.Equal(t, domain.RunCancelled, h.Snapshot().Status)
}

func TestValidationService_CancelAfterCompletionHasNoEffect(t *testing.T) {
	svc, _ := newRealService(t)
	h := submit(t, svc, source.NewString("links.txt", "https://example.com\n"), domain.DefaultLimits())

	result := wait(t, h)
	h.Cancel()

	assert.Equal(t, domain.RunCompleted, result.Status)
	assert.Equal(t, domain.RunCompleted, h.Snapshot().Status)
}

func TestValidationService_MidStreamFailureKeepsCounts(t *testing.T) {
	stream := newGatedStream()
	svc := newMockService(t, stream)
	h := submit(t, svc, source.NewString("links.txt", "x"), domain.DefaultLimits())

	stream.feed <- "https://a.example"
	stream.feed <- "nope"
	stream.feed <- "https://b.example"
	stream.err <- io.ErrUnexpectedEOF

	result := wait(t, h)
	assert.Equal(t, domain.RunFailed, result.Status)
	assert.Equal(t, domain.CodeIOError, result.Code)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.Valid)
	assert.Equal(t, 1, result.Invalid)
}

func TestValidationService_Timeout(t *testing.T) {
	stream := newGatedStream()
	svc := newMockService(t, stream)
	limits := domain.DefaultLimits()
	limits.Timeout = 50 * time.Millisecond

	h := submit(t, svc, source.NewString("links.txt", "x"), limits)
	stream.feed <- "https://a.example"

	result := wait(t, h)
	assert.Equal(t, domain.RunFailed, result.Status)
	assert.Equal(t, domain.CodeTimeout, result.Code)
	assert.Equal(t, 1, result.TotalProcessed)
}

func TestValidationService_OpenFailure(t *testing.T) {
	registry := extractors.NewRegistry()
	registry.Register(&mockExtractor{openErr: fmt.Errorf("%w: broken", domain.ErrFormat)})
	svc, _ := newTestService(t, registry)

	result := wait(t, submit(t, svc, source.NewString("links.txt", "x"), domain.DefaultLimits()))
	assert.Equal(t, domain.RunFailed, result.Status)
	assert.Equal(t, domain.CodeFormatError, result.Code)
}

func TestValidationService_ProgressEvents(t *testing.T) {
	stream := newGatedStream()
	svc := newMockService(t, stream)
	h := submit(t, svc, source.NewString("links.txt", "x"), domain.DefaultLimits())
	events := h.Subscribe()

	var got []domain.ProgressEvent
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range events {
			got = append(got, e)
		}
	}()

	for i := 0; i < 200; i++ {
		stream.feed <- fmt.Sprintf("https://host%d.example", i)
	}
	close(stream.feed)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event channel was not closed")
	}

	require.GreaterOrEqual(t, len(got), 2)
	finals := 0
	for i, e := range got {
		assert.Equal(t, h.ID(), e.RunID)
		assert.Equal(t, e.Processed, e.Valid+e.Invalid)
		if i > 0 {
			assert.GreaterOrEqual(t, e.Processed, got[i-1].Processed, "processed must not decrease")
		}
		if e.Final {
			finals++
		}
	}
	assert.Equal(t, 1, finals)

	last := got[len(got)-1]
	assert.True(t, last.Final)
	assert.Equal(t, domain.RunCompleted, last.Status)
	require.NotNil(t, last.Result)
	assert.Equal(t, 200, last.Result.TotalProcessed)
}

func TestValidationService_SubscribeAfterFinish(t *testing.T) {
	svc, _ := newRealService(t)
	h := submit(t, svc, source.NewString("links.txt", "https://example.com\n"), domain.DefaultLimits())
	wait(t, h)

	var events []domain.ProgressEvent
	for e := range h.Subscribe() {
		events = append(events, e)
	}
	require.Len(t, events, 1)
	assert.True(t, events[0].Final)
	assert.Equal(t, 1, events[0].Processed)
}

func TestValidationService_InvalidRecordsBounded(t *testing.T) {
	svc, _ := newRealService(t)
	limits := domain.DefaultLimits()
	limits.MaxInvalidRecords = 2

	result := wait(t, submit(t, svc, source.NewString("links.txt", "a\nb\nc\nd\ne\n"), limits))

	assert.Equal(t, 5, result.Invalid)
	assert.Len(t, result.InvalidRecords, 2)
	assert.Equal(t, 3, result.InvalidDropped)
	assert.Equal(t, "a", result.InvalidRecords[0].Candidate.Raw)
}

func TestValidationService_History(t *testing.T) {
	svc, store := newRealService(t)
	ctx := context.Background()

	h := submit(t, svc, source.NewString("links.txt", "https://example.com\nbad\n"), domain.DefaultLimits())
	wait(t, h)

	t.Run("get run", func(t *testing.T) {
		run, err := svc.GetRun(ctx, h.ID())
		require.NoError(t, err)
		assert.Equal(t, 2, run.TotalProcessed)
		assert.Len(t, run.InvalidRecords, 1)
	})

	t.Run("status of finished run", func(t *testing.T) {
		state, err := svc.Status(ctx, h.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, state.Status)
		assert.Equal(t, 2, state.Processed)
	})

	t.Run("cancel finished run is a no-op", func(t *testing.T) {
		assert.NoError(t, svc.Cancel(ctx, h.ID()))
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := svc.Status(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, svc.Cancel(ctx, "nope"), domain.ErrNotFound)
	})

	t.Run("history and clear", func(t *testing.T) {
		runs, err := svc.History(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, h.ID(), runs[0].RunID)

		n, err := svc.ClearHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		runs, err = store.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}

func TestValidationService_StatusOfActiveRun(t *testing.T) {
	stream := newGatedStream()
	svc := newMockService(t, stream)
	h := submit(t, svc, source.NewString("links.txt", "x"), domain.DefaultLimits())

	stream.feed <- "https://a.example"
	require.Eventually(t, func() bool { return h.Snapshot().Processed == 1 }, 2*time.Second, time.Millisecond)

	state, err := svc.Status(context.Background(), h.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, state.Status)
	assert.Equal(t, 1, state.Processed)

	require.NoError(t, svc.Cancel(context.Background(), h.ID()))
	result := wait(t, h)
	assert.Equal(t, domain.RunCancelled, result.Status)
}

func TestValidationService_HistoryDisabled(t *testing.T) {
	settings := testSettings()
	settings.History.Enabled = false
	store := memory.NewRunStore()
	svc := NewValidationService(extractors.NewDefaultRegistry(encoding.NewResolver()), validator.New(), store, settings)

	h, err := svc.Submit(context.Background(), driving.SubmitRequest{Source: source.NewString("a.txt", "https://a.example\n")})
	require.NoError(t, err)
	wait(t, h)

	_, err = svc.GetRun(context.Background(), h.ID())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidationService_ValidateURL(t *testing.T) {
	svc, _ := newRealService(t)

	rec := svc.ValidateURL("HTTP://Example.COM:80/a", domain.DefaultValidationPolicy())
	assert.True(t, rec.IsValid())
	assert.Equal(t, "http://example.com/a", rec.Normalized)

	policy := domain.DefaultValidationPolicy()
	policy.AllowLocalhost = false
	rec = svc.ValidateURL("http://localhost:8080", policy)
	assert.Equal(t, domain.ReasonInternalHostDisallowed, rec.Reason)
}
