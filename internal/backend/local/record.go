package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spool/internal/domain"
)

const recordFile = "installed_mods.json"

// LoadRecord reads the installed-mods record. A missing file is an empty
// record, not an error.
func (b *Backend) LoadRecord(ctx context.Context) (domain.InstalledModsRecord, error) {
	data, err := os.ReadFile(filepath.Join(b.dataDir, recordFile))
	if errors.Is(err, os.ErrNotExist) {
		return domain.InstalledModsRecord{}, nil
	}
	if err != nil {
		return domain.InstalledModsRecord{}, fmt.Errorf("reading installed mods record: %w", err)
	}

	var record domain.InstalledModsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.InstalledModsRecord{}, fmt.Errorf("parsing installed mods record: %w", err)
	}
	return record, nil
}

// SaveRecord writes the installed-mods record atomically.
func (b *Backend) SaveRecord(ctx context.Context, record domain.InstalledModsRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing installed mods record: %w", err)
	}

	if err := os.MkdirAll(b.dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(b.dataDir, recordFile)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing installed mods record: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("finalizing installed mods record: %w", err)
	}
	return nil
}
