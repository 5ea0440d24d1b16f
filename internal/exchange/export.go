package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/hiit/internal/model"
)

// Unified export metadata.
const (
	AppID         = "hiit-timer"
	FormatVersion = 1
)

// isoMillis matches the ISO-8601 UTC timestamp with milliseconds used in exports.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Meta is the header of a unified export.
type Meta struct {
	App        string `json:"app"`
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt"`
}

// Payload is the unified export document.
type Payload struct {
	Meta      Meta              `json:"meta"`
	Settings  model.AppSettings `json:"settings"`
	Trainings []model.Training  `json:"trainings"`
}

// Sink receives exported files.
type Sink interface {
	Save(filename string, data []byte) error
}

// DirSink writes exported files into a directory.
type DirSink struct {
	Dir string
}

// Save writes data to Dir/filename atomically. filename must be a bare name.
func (d DirSink) Save(filename string, data []byte) error {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("invalid export filename %q", filename)
	}

	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// ErrExport wraps every export failure.
var ErrExport = errors.New("export failed")

// Exporter serializes records to pretty JSON and hands them to a Sink.
type Exporter struct {
	sink   Sink
	logger *slog.Logger

	// Now is the clock used for generated filenames and export timestamps.
	Now func() time.Time
}

// NewExporter creates an exporter writing to sink.
func NewExporter(sink Sink, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		sink:   sink,
		logger: logger,
		Now:    time.Now,
	}
}

// ExportTrainings exports the training list. An empty filename gets a
// generated timestamped name. The written filename and size are returned.
func (e *Exporter) ExportTrainings(trainings []model.Training, filename string) (string, int, error) {
	if filename == "" {
		filename = TrainingsFilename(e.Now())
	}
	return e.export("trainings", filename, func() ([]byte, error) {
		return model.EncodeTrainings(trainings, true)
	})
}

// ExportAppSettings exports the app settings.
func (e *Exporter) ExportAppSettings(settings model.AppSettings, filename string) (string, int, error) {
	if filename == "" {
		filename = SettingsFilename(e.Now())
	}
	return e.export("app settings", filename, func() ([]byte, error) {
		return json.MarshalIndent(settings, "", "  ")
	})
}

// ExportAll exports trainings and settings together under a meta header.
// Nil trainings export as [] and empty settings as the defaults.
func (e *Exporter) ExportAll(trainings []model.Training, settings model.AppSettings, filename string) (string, int, error) {
	now := e.Now()
	if filename == "" {
		filename = UnifiedFilename(now)
	}
	if trainings == nil {
		trainings = []model.Training{}
	}
	if settings.IsZero() {
		settings = model.DefaultAppSettings()
	}

	payload := Payload{
		Meta: Meta{
			App:        AppID,
			Version:    FormatVersion,
			ExportedAt: now.UTC().Format(isoMillis),
		},
		Settings:  settings,
		Trainings: trainings,
	}
	return e.export("all data", filename, func() ([]byte, error) {
		return json.MarshalIndent(payload, "", "  ")
	})
}

func (e *Exporter) export(what, filename string, encode func() ([]byte, error)) (string, int, error) {
	data, err := encode()
	if err != nil {
		e.logger.Error("export failed", "what", what, "error", err)
		return "", 0, fmt.Errorf("%w: encode %s: %w", ErrExport, what, err)
	}

	if err := e.sink.Save(filename, data); err != nil {
		e.logger.Error("export failed", "what", what, "filename", filename, "error", err)
		return "", 0, fmt.Errorf("%w: save %s: %w", ErrExport, filename, err)
	}

	e.logger.Debug("exported", "what", what, "filename", filename, "bytes", len(data))
	return filename, len(data), nil
}
