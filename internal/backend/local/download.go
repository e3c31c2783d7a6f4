package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// download fetches url into destPath through a temp file so a partial
// download never masquerades as a complete archive.
func (b *Backend) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: HTTP %d %s", url, resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	tempPath := destPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(tempPath)
	}()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("writing download: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing download file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("finalizing download: %w", err)
	}

	return nil
}
