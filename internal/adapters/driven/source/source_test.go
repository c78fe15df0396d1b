package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

func TestFileSource(t *testing.T) {
	t.Run("reads existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "links.txt")
		require.NoError(t, os.WriteFile(path, []byte("https://example.com\n"), 0o644))

		src := NewFile(path)
		assert.Equal(t, path, src.Name())

		size, err := src.Size()
		require.NoError(t, err)
		assert.Equal(t, int64(20), size)

		rc, err := src.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com\n", string(data))
	})

	t.Run("missing file is not found", func(t *testing.T) {
		src := NewFile(filepath.Join(t.TempDir(), "nope.csv"))

		_, err := src.Size()
		assert.ErrorIs(t, err, domain.ErrSourceNotFound)

		_, err = src.Open()
		assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	})

	t.Run("directory is unreadable", func(t *testing.T) {
		_, err := NewFile(t.TempDir()).Size()
		assert.ErrorIs(t, err, domain.ErrSourceUnreadable)
	})
}

func TestBytesSource(t *testing.T) {
	src := NewString("urls.csv", "url\nhttps://a.example\n")

	assert.Equal(t, "urls.csv", src.Name())
	size, err := src.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(22), size)

	// Each Open starts from the beginning.
	for i := 0; i < 2; i++ {
		rc, err := src.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "url\nhttps://a.example\n", string(data))
		require.NoError(t, rc.Close())
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := NewWatcher(path, 20*time.Millisecond).Watch(ctx)
	require.NoError(t, err)

	t.Run("ignores other files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
		select {
		case <-changes:
			t.Fatal("unexpected change for unrelated file")
		case <-time.After(150 * time.Millisecond):
		}
	})

	t.Run("reports write to watched file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("b\n"), 0o644))
		select {
		case _, ok := <-changes:
			assert.True(t, ok)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for change")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		cancel()
		select {
		case _, ok := <-changes:
			for ok {
				_, ok = <-changes
			}
		case <-time.After(3 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})
}
