package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/entities"
)

// Archiver writes audit events to JSON files before retention removes them.
type Archiver struct {
	Dir string
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// archiveFile is the on-disk shape of one archive batch.
type archiveFile struct {
	ArchivedAt time.Time             `json:"archived_at"`
	Cutoff     time.Time             `json:"cutoff"`
	Events     []entities.AuditEvent `json:"events"`
}

// SaveEvents writes events into a new uniquely named file and returns its name.
func (a *Archiver) SaveEvents(events []entities.AuditEvent, cutoff time.Time) (string, error) {
	return a.SaveJSON(archiveFile{
		ArchivedAt: time.Now().UTC(),
		Cutoff:     cutoff.UTC(),
		Events:     events,
	})
}

// SaveJSON saves data as indented JSON under a UUID filename.
func (a *Archiver) SaveJSON(data any) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	filename := fmt.Sprintf("audit-%s.json", uuid.New().String())
	path := filepath.Join(a.Dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	log.Printf("Archived audit events to %s", path)
	return filename, nil
}

func (a *Archiver) ensureDir() error {
	if _, err := os.Stat(a.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return nil
}
