package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hiit/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySink keeps exported files in memory.
type memorySink struct {
	files map[string][]byte
	err   error
}

func newMemorySink() *memorySink {
	return &memorySink{files: make(map[string][]byte)}
}

func (m *memorySink) Save(filename string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.files[filename] = data
	return nil
}

func jsonFile(name, body string) *File {
	return &File{Name: name, Body: strings.NewReader(body)}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 5, 9, 3, 7, 250*int(time.Millisecond), time.Local)
}

func TestFilenames(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 3, 7, 0, time.Local)

	assert.Equal(t, "hiit-trainings-2024-01-05-090307.json", TrainingsFilename(at))
	assert.Equal(t, "hiit-app-settings-2024-01-05-090307.json", SettingsFilename(at))
	assert.Equal(t, "hiit-data-2024-01-05-090307.json", UnifiedFilename(at))
}

func TestFilename_UsesLocationOfTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC).In(loc)

	assert.Equal(t, "hiit-data-2025-01-01-015959.json", UnifiedFilename(at))
}

func TestBackupFilename(t *testing.T) {
	at := fixedClock()

	name, id, err := BackupFilename(at)
	require.NoError(t, err)
	assert.Equal(t, "hiit-backup-"+id+".json", name)

	uid, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), uid.Time())

	other, _, err := BackupFilename(at)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestExporter_ExportTrainings(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())
	e.Now = fixedClock

	trainings := []model.Training{map[string]any{"name": "Tabata"}}
	name, size, err := e.ExportTrainings(trainings, "")
	require.NoError(t, err)

	assert.Equal(t, "hiit-trainings-2024-01-05-090307.json", name)
	assert.Equal(t, "[\n  {\n    \"name\": \"Tabata\"\n  }\n]", string(sink.files[name]))
	assert.Equal(t, len(sink.files[name]), size)
}

func TestExporter_ExportTrainings_CustomFilename(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())

	name, _, err := e.ExportTrainings(nil, "backup.json")
	require.NoError(t, err)

	assert.Equal(t, "backup.json", name)
	assert.Equal(t, "[]", string(sink.files["backup.json"]))
}

func TestExporter_ExportAppSettings(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())
	e.Now = fixedClock

	name, _, err := e.ExportAppSettings(model.DefaultAppSettings(), "")
	require.NoError(t, err)

	assert.Equal(t, "hiit-app-settings-2024-01-05-090307.json", name)
	assert.JSONEq(t,
		`{"soundConfig":{"midpoint":"beep_medium","countdown":"beep_high","transition":"chime"}}`,
		string(sink.files[name]))
	assert.Contains(t, string(sink.files[name]), "\n  \"soundConfig\": {\n    \"midpoint\"")
}

func TestExporter_ExportAll(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())
	e.Now = fixedClock

	name, _, err := e.ExportAll([]model.Training{1.0, 2.0}, model.AppSettings{}, "")
	require.NoError(t, err)
	assert.Equal(t, "hiit-data-2024-01-05-090307.json", name)

	var doc struct {
		Meta      Meta            `json:"meta"`
		Settings  json.RawMessage `json:"settings"`
		Trainings []any           `json:"trainings"`
	}
	require.NoError(t, json.Unmarshal(sink.files[name], &doc))

	assert.Equal(t, "hiit-timer", doc.Meta.App)
	assert.Equal(t, 1, doc.Meta.Version)
	assert.Equal(t, fixedClock().UTC().Format("2006-01-02T15:04:05.000Z"), doc.Meta.ExportedAt)
	assert.True(t, strings.HasSuffix(doc.Meta.ExportedAt, ".250Z"))
	assert.JSONEq(t,
		`{"soundConfig":{"midpoint":"beep_medium","countdown":"beep_high","transition":"chime"}}`,
		string(doc.Settings))
	assert.Equal(t, []any{1.0, 2.0}, doc.Trainings)
}

func TestExporter_ExportAll_NilTrainings(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())

	name, _, err := e.ExportAll(nil, model.DefaultAppSettings(), "all.json")
	require.NoError(t, err)
	assert.Contains(t, string(sink.files[name]), `"trainings": []`)
}

func TestExporter_UnserializableDataIsReturned(t *testing.T) {
	sink := newMemorySink()
	e := NewExporter(sink, quietLogger())

	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	_, _, err := e.ExportTrainings([]model.Training{cyclic}, "")
	assert.ErrorIs(t, err, ErrExport)

	_, _, err = e.ExportAll([]model.Training{math.Inf(1)}, model.DefaultAppSettings(), "")
	assert.ErrorIs(t, err, ErrExport)

	bad := model.DefaultAppSettings()
	bad.Extra = map[string]json.RawMessage{"broken": json.RawMessage(`{`)}
	_, _, err = e.ExportAppSettings(bad, "")
	assert.ErrorIs(t, err, ErrExport)

	assert.Empty(t, sink.files)
}

func TestExporter_SinkErrorIsReturned(t *testing.T) {
	sink := newMemorySink()
	sink.err = errors.New("disk full")
	e := NewExporter(sink, quietLogger())

	_, _, err := e.ExportTrainings(nil, "")
	assert.ErrorIs(t, err, ErrExport)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDirSink_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := DirSink{Dir: dir}

	require.NoError(t, sink.Save("hiit-data.json", []byte(`{}`)))

	data, err := os.ReadFile(filepath.Join(dir, "hiit-data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	assert.Error(t, sink.Save("../escape.json", []byte(`{}`)))
	assert.Error(t, sink.Save("", []byte(`{}`)))
}

func TestImportTrainings(t *testing.T) {
	im := NewImporter(quietLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		file    *File
		want    []model.Training
		wantErr error
	}{
		{
			name: "array",
			file: jsonFile("data.json", `[1,2,3]`),
			want: []model.Training{json.Number("1"), json.Number("2"), json.Number("3")},
		},
		{
			name: "empty array",
			file: jsonFile("data.json", `[]`),
			want: []model.Training{},
		},
		{
			name: "content type without suffix",
			file: &File{Name: "upload", ContentType: "application/json; charset=utf-8", Body: strings.NewReader(`[]`)},
			want: []model.Training{},
		},
		{name: "no file", file: nil, wantErr: ErrNoFile},
		{name: "not json name", file: jsonFile("data.txt", `[1,2,3]`), wantErr: ErrNotJSON},
		{name: "object", file: jsonFile("data.json", `{}`), wantErr: ErrShape},
		{name: "null", file: jsonFile("data.json", `null`), wantErr: ErrShape},
		{name: "parse error", file: jsonFile("data.json", `[1,`), wantErr: ErrImport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := im.ImportTrainings(ctx, tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportTrainings_ShapeErrorIsImportError(t *testing.T) {
	_, err := NewImporter(quietLogger()).ImportTrainings(context.Background(), jsonFile("data.json", `{}`))

	assert.ErrorIs(t, err, ErrImport)
	assert.ErrorIs(t, err, model.ErrNotArray)
	assert.True(t, strings.HasPrefix(err.Error(), "import failed: "))
}

func TestImportTrainings_NilBody(t *testing.T) {
	_, err := NewImporter(quietLogger()).ImportTrainings(context.Background(), &File{Name: "data.json"})
	assert.ErrorIs(t, err, ErrNoFile)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device error") }

func TestImport_ReadError(t *testing.T) {
	_, err := NewImporter(quietLogger()).ImportAll(context.Background(), &File{Name: "data.json", Body: failingReader{}})
	assert.ErrorIs(t, err, ErrRead)
}

func TestImport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(quietLogger()).ImportTrainings(ctx, jsonFile("data.json", `[]`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportAppSettings(t *testing.T) {
	im := NewImporter(quietLogger())
	ctx := context.Background()

	got, err := im.ImportAppSettings(ctx, jsonFile("s.json",
		`{"soundConfig":{"midpoint":"ping","countdown":"bell","transition":"ding"},"theme":"dark"}`))
	require.NoError(t, err)
	assert.Equal(t, model.SoundConfig{Midpoint: "ping", Countdown: "bell", Transition: "ding"}, got.SoundConfig)
	assert.JSONEq(t, `"dark"`, string(got.Extra["theme"]))

	got, err = im.ImportAppSettings(ctx, jsonFile("s.json", `{}`))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppSettings(), got)

	for _, body := range []string{`[]`, `"x"`, `null`} {
		_, err = im.ImportAppSettings(ctx, jsonFile("s.json", body))
		assert.ErrorIs(t, err, ErrShape, body)
	}

	_, err = im.ImportAppSettings(ctx, jsonFile("s.json", `{"soundConfig":`))
	assert.ErrorIs(t, err, ErrImport)
	assert.NotErrorIs(t, err, ErrShape)

	_, err = im.ImportAppSettings(ctx, jsonFile("s.yaml", `{}`))
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestImportAppSettings_MalformedSoundConfig(t *testing.T) {
	im := NewImporter(quietLogger())
	ctx := context.Background()

	tests := []struct {
		name      string
		body      string
		wantSound model.SoundConfig
	}{
		{
			name:      "string",
			body:      `{"soundConfig":"loud","theme":"dark"}`,
			wantSound: model.DefaultSoundConfig(),
		},
		{
			name:      "number",
			body:      `{"soundConfig":3,"theme":"dark"}`,
			wantSound: model.DefaultSoundConfig(),
		},
		{
			name: "non-string value",
			body: `{"soundConfig":{"midpoint":5,"countdown":"bell"},"theme":"dark"}`,
			wantSound: model.SoundConfig{
				Midpoint: "beep_medium", Countdown: "bell", Transition: "chime",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := im.ImportAppSettings(ctx, jsonFile("s.json", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSound, got.SoundConfig)
			assert.JSONEq(t, `"dark"`, string(got.Extra["theme"]))
		})
	}
}

func TestImportAll(t *testing.T) {
	im := NewImporter(quietLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want Imported
	}{
		{
			name: "trainings not an array",
			body: `{"trainings": "not-an-array"}`,
			want: Imported{Trainings: []model.Training{}, Settings: model.DefaultAppSettings()},
		},
		{
			name: "empty object",
			body: `{}`,
			want: Imported{Trainings: []model.Training{}, Settings: model.DefaultAppSettings()},
		},
		{
			name: "settings not an object",
			body: `{"settings": [1], "trainings": [{"name": "HIIT"}]}`,
			want: Imported{
				Trainings: []model.Training{map[string]any{"name": "HIIT"}},
				Settings:  model.DefaultAppSettings(),
			},
		},
		{
			name: "top-level array",
			body: `[1,2]`,
			want: Imported{Trainings: []model.Training{}, Settings: model.DefaultAppSettings()},
		},
		{
			name: "empty top-level array",
			body: `[]`,
			want: Imported{Trainings: []model.Training{}, Settings: model.DefaultAppSettings()},
		},
		{
			name: "malformed sound config keeps other settings",
			body: `{"settings":{"soundConfig":{"midpoint":5},"theme":"dark"}}`,
			want: Imported{
				Trainings: []model.Training{},
				Settings: model.AppSettings{
					SoundConfig: model.DefaultSoundConfig(),
					Extra:       map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)},
				},
			},
		},
		{
			name: "full document",
			body: `{"meta":{"app":"hiit-timer","version":1},"settings":{"soundConfig":{"midpoint":"boop","countdown":"ping","transition":"bell"}},"trainings":[1]}`,
			want: Imported{
				Trainings: []model.Training{json.Number("1")},
				Settings: model.AppSettings{SoundConfig: model.SoundConfig{
					Midpoint: "boop", Countdown: "ping", Transition: "bell",
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := im.ImportAll(ctx, jsonFile("data.json", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportAll_Rejects(t *testing.T) {
	im := NewImporter(quietLogger())
	ctx := context.Background()

	_, err := im.ImportAll(ctx, nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = im.ImportAll(ctx, jsonFile("data.csv", `{}`))
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = im.ImportAll(ctx, jsonFile("data.json", `{"trainings": [`))
	assert.ErrorIs(t, err, ErrImport)

	for _, body := range []string{`null`, `42`, `"x"`, `true`} {
		_, err = im.ImportAll(ctx, jsonFile("data.json", body))
		assert.ErrorIs(t, err, ErrShape, body)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(DirSink{Dir: dir}, quietLogger())

	trainings := []model.Training{map[string]any{"name": "EMOM", "minutes": json.Number("12.5")}}
	settings := model.AppSettings{SoundConfig: model.SoundConfig{
		Midpoint: "ding", Countdown: "buzz_short", Transition: "bell",
	}}

	name, _, err := e.ExportAll(trainings, settings, "")
	require.NoError(t, err)

	f, closer, err := OpenFile(filepath.Join(dir, name))
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, JSONContentType, f.ContentType)

	got, err := NewImporter(quietLogger()).ImportAll(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, trainings, got.Trainings)
	assert.Equal(t, settings, got.Settings)
}

func TestOpenFile_Missing(t *testing.T) {
	_, _, err := OpenFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrRead)
}
