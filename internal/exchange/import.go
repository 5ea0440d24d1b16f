package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/hiit/internal/model"
)

// JSONContentType is the content type accepted for imports.
const JSONContentType = "application/json"

// Import errors. Validation failures wrap ErrImport and one of the more
// specific errors below.
var (
	ErrNoFile  = errors.New("no file selected")
	ErrNotJSON = errors.New("please choose a JSON file")
	ErrRead    = errors.New("failed to read file")
	ErrImport  = errors.New("import failed")
	ErrShape   = errors.New("unexpected JSON shape")
)

// File is a user-supplied file to import.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// OpenFile opens a file from disk for import. The content type is derived
// from the extension. The caller closes the returned closer.
func OpenFile(path string) (*File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	return &File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Body:        f,
	}, f, nil
}

// Imported is the result of a unified import.
type Imported struct {
	Trainings []model.Training
	Settings  model.AppSettings
}

// Importer validates import files. It never writes to storage: callers save
// the returned values themselves.
type Importer struct {
	logger *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{logger: logger}
}

// ImportTrainings reads a JSON array of trainings.
func (im *Importer) ImportTrainings(ctx context.Context, f *File) ([]model.Training, error) {
	data, err := readJSONFile(ctx, f)
	if err != nil {
		return nil, err
	}

	trainings, err := model.DecodeTrainings(data)
	if err != nil {
		if errors.Is(err, model.ErrNotArray) {
			return nil, importError(fmt.Errorf("%w: %w", ErrShape, err))
		}
		return nil, importError(err)
	}

	im.logger.Debug("trainings imported", "file", f.Name, "count", len(trainings))
	return trainings, nil
}

// ImportAppSettings reads a settings object. A missing or partial sound config
// is completed from the defaults.
func (im *Importer) ImportAppSettings(ctx context.Context, f *File) (model.AppSettings, error) {
	data, err := readJSONFile(ctx, f)
	if err != nil {
		return model.AppSettings{}, err
	}

	if !json.Valid(data) {
		return model.AppSettings{}, importError(syntaxError(data))
	}

	var settings model.AppSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.AppSettings{}, importError(fmt.Errorf("%w: %w", ErrShape, err))
	}

	im.logger.Debug("app settings imported", "file", f.Name)
	return settings.Normalize(), nil
}

// ImportAll reads a unified export. Only null and scalars are rejected at the
// top level: a missing or malformed "trainings" becomes an empty list and a
// missing or malformed "settings" becomes the defaults. A top-level array has
// neither and yields both defaults.
func (im *Importer) ImportAll(ctx context.Context, f *File) (Imported, error) {
	data, err := readJSONFile(ctx, f)
	if err != nil {
		return Imported{}, err
	}

	out := Imported{
		Trainings: []model.Training{},
		Settings:  model.DefaultAppSettings(),
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Imported{}, importError(err)
		}
		if typeErr.Value != "array" {
			return Imported{}, importError(fmt.Errorf("%w: invalid JSON format", ErrShape))
		}
		// An array has no fields to read: everything takes its default
		im.logger.Debug("unified import is an array, using defaults", "file", f.Name)
		return out, nil
	}
	if doc == nil {
		return Imported{}, importError(fmt.Errorf("%w: invalid JSON format", ErrShape))
	}

	if raw, ok := doc["trainings"]; ok {
		if trainings, err := model.DecodeTrainings(raw); err == nil {
			out.Trainings = trainings
		} else {
			im.logger.Debug("ignoring invalid trainings in import", "file", f.Name, "error", err)
		}
	}

	if raw, ok := doc["settings"]; ok {
		var settings model.AppSettings
		if err := json.Unmarshal(raw, &settings); err == nil {
			out.Settings = settings.Normalize()
		} else {
			im.logger.Debug("ignoring invalid settings in import", "file", f.Name, "error", err)
		}
	}

	im.logger.Debug("all data imported", "file", f.Name, "trainings", len(out.Trainings))
	return out, nil
}

// readJSONFile runs the checks shared by every import and returns the body.
func readJSONFile(ctx context.Context, f *File) ([]byte, error) {
	if f == nil || f.Body == nil {
		return nil, ErrNoFile
	}

	if !isJSONFile(f) {
		return nil, ErrNotJSON
	}

	data, err := readAll(ctx, f.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, nil
}

func isJSONFile(f *File) bool {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == JSONContentType || strings.HasSuffix(f.Name, ".json")
}

// readAll reads r in chunks, stopping early when ctx is done.
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// syntaxError returns the parse error for invalid JSON.
func syntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}

func importError(err error) error {
	return fmt.Errorf("%w: %w", ErrImport, err)
}
