// Package exchange exports hiit records to JSON files and imports them back.
package exchange

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Filename prefixes for the three export kinds.
const (
	TrainingsPrefix = "hiit-trainings"
	SettingsPrefix  = "hiit-app-settings"
	UnifiedPrefix   = "hiit-data"
	BackupPrefix    = "hiit-backup"
)

// filenameLayout is YYYY-MM-DD-HHmmss.
const filenameLayout = "2006-01-02-150405"

// Filename returns "<prefix>-YYYY-MM-DD-HHmmss.json" for t in t's location.
func Filename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.json", prefix, t.Format(filenameLayout))
}

// TrainingsFilename names a trainings export made at t.
func TrainingsFilename(t time.Time) string {
	return Filename(TrainingsPrefix, t)
}

// SettingsFilename names a settings export made at t.
func SettingsFilename(t time.Time) string {
	return Filename(SettingsPrefix, t)
}

// UnifiedFilename names a unified export made at t.
func UnifiedFilename(t time.Time) string {
	return Filename(UnifiedPrefix, t)
}

// BackupFilename names the unified export written before an import replaces
// stored data. The ULID sorts by t and also serves as the import id.
func BackupFilename(t time.Time) (filename, id string, err error) {
	uid, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate backup id: %w", err)
	}
	id = uid.String()
	return fmt.Sprintf("%s-%s.json", BackupPrefix, id), id, nil
}
