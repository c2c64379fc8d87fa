package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "waconsole/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	getMediaURLFn   func(ctx context.Context, mediaID string) (string, error)
	downloadMediaFn func(ctx context.Context, url string) (io.ReadCloser, error)
}

func (s *stubResolver) GetMediaURL(ctx context.Context, mediaID string) (string, error) {
	return s.getMediaURLFn(ctx, mediaID)
}

func (s *stubResolver) DownloadMedia(ctx context.Context, url string) (io.ReadCloser, error) {
	return s.downloadMediaFn(ctx, url)
}

func happyResolver(content string) *stubResolver {
	return &stubResolver{
		getMediaURLFn: func(ctx context.Context, mediaID string) (string, error) {
			return "https://cdn.example.com/" + mediaID, nil
		},
		downloadMediaFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestNewFetcherCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")

	fetcher, err := NewFetcher(dir, happyResolver(""))
	require.NoError(t, err)
	assert.Equal(t, dir, fetcher.Dir())
	assert.DirExists(t, dir)
}

func TestNewFetcherRejectsTraversal(t *testing.T) {
	_, err := NewFetcher("../outside", happyResolver(""))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	fetcher, err := NewFetcher(dir, happyResolver("image-bytes"))
	require.NoError(t, err)

	ref, err := fetcher.Fetch(context.Background(), "m1", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/m1.jpg", ref)

	data, err := os.ReadFile(filepath.Join(dir, "m1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestFetchUnknownMimeType(t *testing.T) {
	fetcher, err := NewFetcher(t.TempDir(), happyResolver("blob"))
	require.NoError(t, err)

	// A type outside the explicit table falls back to its subtype
	ref, err := fetcher.Fetch(context.Background(), "m2", "application/x-unknown-thing")
	require.NoError(t, err)
	assert.Equal(t, "/media/m2.x-unknown-thing", ref)

	// A type with no usable subtype gets the default extension
	ref, err = fetcher.Fetch(context.Background(), "m3", "gibberish")
	require.NoError(t, err)
	assert.Equal(t, "/media/m3.bin", ref)
}

func TestFetchRejectsUnsafeMediaID(t *testing.T) {
	fetcher, err := NewFetcher(t.TempDir(), happyResolver("x"))
	require.NoError(t, err)

	for _, id := range []string{"../evil", "a/b", ""} {
		ref, err := fetcher.Fetch(context.Background(), id, "image/jpeg")
		require.Error(t, err, "media id %q", id)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
		assert.Empty(t, ref)
	}
}

func TestFetchResolveFailure(t *testing.T) {
	resolver := &stubResolver{
		getMediaURLFn: func(ctx context.Context, mediaID string) (string, error) {
			return "", fmt.Errorf("expired handle")
		},
	}
	dir := t.TempDir()
	fetcher, err := NewFetcher(dir, resolver)
	require.NoError(t, err)

	ref, err := fetcher.Fetch(context.Background(), "m1", "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMediaDownload, apperrors.GetCode(err))
	assert.Empty(t, ref)

	// Nothing gets stored on failure
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchDownloadFailure(t *testing.T) {
	resolver := &stubResolver{
		getMediaURLFn: func(ctx context.Context, mediaID string) (string, error) {
			return "https://cdn.example.com/m1", nil
		},
		downloadMediaFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
			return nil, fmt.Errorf("connection reset")
		},
	}
	fetcher, err := NewFetcher(t.TempDir(), resolver)
	require.NoError(t, err)

	ref, err := fetcher.Fetch(context.Background(), "m1", "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMediaDownload, apperrors.GetCode(err))
	assert.Empty(t, ref)
}

func TestFetchOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	fetcher, err := NewFetcher(dir, happyResolver("second"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "m1.jpg"), []byte("first"), 0600))

	ref, err := fetcher.Fetch(context.Background(), "m1", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/m1.jpg", ref)

	data, err := os.ReadFile(filepath.Join(dir, "m1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestCleanupOldFiles(t *testing.T) {
	dir := t.TempDir()
	fetcher, err := NewFetcher(dir, happyResolver(""))
	require.NoError(t, err)

	oldPath := filepath.Join(dir, "old.jpg")
	newPath := filepath.Join(dir, "new.jpg")
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0600))
	require.NoError(t, os.WriteFile(newPath, []byte("new"), 0600))

	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	require.NoError(t, fetcher.CleanupOldFiles(7))

	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, newPath)
}
