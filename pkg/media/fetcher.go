package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"waconsole/internal/constants"
	apperrors "waconsole/internal/errors"
	"waconsole/internal/security"
)

// Resolver is the slice of the provider client the fetcher needs.
type Resolver interface {
	GetMediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetcher resolves a remote media handle to a locally stored file and returns
// a console-servable reference. Failures are reported but callers treat them
// as non-fatal: the owning message is recorded without a local reference.
type Fetcher struct {
	dir      string
	resolver Resolver
}

// RefPrefix is the public path prefix under which stored media is served.
const RefPrefix = "/media/"

func NewFetcher(dir string, resolver Resolver) (*Fetcher, error) {
	if err := security.ValidateFilePath(dir); err != nil {
		return nil, fmt.Errorf("invalid media directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Fetcher{dir: dir, resolver: resolver}, nil
}

// Dir returns the directory media files are stored in.
func (f *Fetcher) Dir() string {
	return f.dir
}

// Fetch downloads the media behind remoteID and stores it as
// {remoteID}.{ext}, returning the /media/ reference. There is no retry; a
// failed fetch yields an empty reference and an error for logging.
func (f *Fetcher) Fetch(ctx context.Context, remoteID, mimeType string) (string, error) {
	if err := security.ValidateFileName(remoteID); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "unusable media id")
	}

	url, err := f.resolver.GetMediaURL(ctx, remoteID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to resolve media URL")
	}

	body, err := f.resolver.DownloadMedia(ctx, url)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to download media")
	}
	defer body.Close()

	ext := constants.ExtensionForMimeType(mimeType)
	name := remoteID + "." + ext
	finalPath := filepath.Join(f.dir, name)

	tempFile, err := os.CreateTemp(f.dir, "download_*")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to create temp file")
	}

	if _, err := io.Copy(tempFile, body); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to write media file")
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to close media file")
	}

	if err := os.Rename(tempFile.Name(), finalPath); err != nil {
		os.Remove(tempFile.Name())
		return "", apperrors.Wrap(err, apperrors.ErrCodeMediaDownload, "failed to store media file")
	}

	return RefPrefix + name, nil
}

// CleanupOldFiles removes stored media older than maxAgeDays.
func (f *Fetcher) CleanupOldFiles(maxAgeDays int) error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("failed to read media directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(f.dir, info.Name())); err != nil {
				return fmt.Errorf("failed to remove old file: %w", err)
			}
		}
	}

	return nil
}
