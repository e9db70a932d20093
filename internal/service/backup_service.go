package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/profile"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the export file format
type BackupData struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	StorageKey string              `json:"storage_key"`
	Profiles   models.AllUsersData `json:"profiles"`
}

// BackupService exports and restores the profile blob
type BackupService struct {
	store *profile.Store
}

// NewBackupService creates a new backup service
func NewBackupService(store *profile.Store) *BackupService {
	return &BackupService{store: store}
}

// Export writes a backup to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	log.Printf("Profiles exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a backup to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now(),
		StorageKey: profile.StorageKey,
		Profiles:   s.store.Snapshot(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	log.Printf("Exported %d profiles", len(backup.Profiles))
	return nil
}

// Import restores profiles from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, replace)
}

// ImportFromReader restores profiles from r. Without replace, imported
// profiles overwrite same-named ones and every other profile is kept.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, replace bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	data := backup.Profiles
	if !replace {
		data = s.store.Snapshot()
		for name, p := range backup.Profiles {
			data[profile.Key(name)] = p
		}
	}
	if err := s.store.Replace(ctx, data); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}

	log.Printf("Imported %d profiles", len(backup.Profiles))
	return nil
}
