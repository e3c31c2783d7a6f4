package local

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractZip extracts archivePath into destDir and returns the relative
// paths of the files written, in archive order.
func extractZip(archivePath, destDir string) (files []string, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
	}()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating mod directory: %w", err)
	}

	for _, f := range r.File {
		rel, err := extractZipFile(f, destDir)
		if err != nil {
			return nil, err
		}
		if rel != "" {
			files = append(files, rel)
		}
	}

	return files, nil
}

// extractZipFile writes one archive entry under destDir and returns its
// relative path, or empty for directories.
func extractZipFile(f *zip.File, destDir string) (rel string, err error) {
	destPath, err := sanitizePath(destDir, f.Name)
	if err != nil {
		return "", err
	}

	if f.FileInfo().IsDir() {
		return "", os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return "", fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err := io.Copy(outFile, rc); err != nil {
		return "", fmt.Errorf("writing file %s: %w", destPath, err)
	}

	relPath, err := filepath.Rel(destDir, destPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// sanitizePath resolves an archive entry name inside destDir, rejecting
// entries that would escape it ("zip slip").
func sanitizePath(destDir, entryName string) (string, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(entryName))
	if filepath.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
		return "", fmt.Errorf("archive entry escapes destination: %s", entryName)
	}

	destPath := filepath.Join(destDir, cleanPath)
	if destPath != destDir && !strings.HasPrefix(destPath, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", entryName)
	}
	return destPath, nil
}
