package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/hiit/internal/model"
)

// Storage keys for the two persisted records.
const (
	TrainingsKey = "hiit-trainings"
	SettingsKey  = "hiit-app-settings"
)

// Records reads and writes trainings and app settings in a KV.
//
// Loads never fail: absent or unreadable data is logged and replaced by an empty
// training list or default settings. Saves return serialization and storage errors.
type Records struct {
	kv     KV
	logger *slog.Logger
}

// NewRecords creates a Records over kv.
func NewRecords(kv KV, logger *slog.Logger) *Records {
	if logger == nil {
		logger = slog.Default()
	}
	return &Records{kv: kv, logger: logger}
}

// SaveTrainings stores the training list.
func (r *Records) SaveTrainings(trainings []model.Training) error {
	data, err := model.EncodeTrainings(trainings, false)
	if err != nil {
		r.logger.Error("failed to encode trainings", "error", err)
		return fmt.Errorf("encode trainings: %w", err)
	}

	if err := r.kv.Set(TrainingsKey, string(data)); err != nil {
		r.logger.Error("failed to save trainings", "error", err)
		return fmt.Errorf("save trainings: %w", err)
	}

	r.logger.Debug("trainings saved", "count", len(trainings))
	return nil
}

// LoadTrainings returns the stored training list, or an empty list.
func (r *Records) LoadTrainings() []model.Training {
	data, ok, err := r.kv.Get(TrainingsKey)
	if err != nil {
		r.logger.Error("failed to read trainings", "error", err)
		return []model.Training{}
	}
	if !ok {
		return []model.Training{}
	}

	trainings, err := model.DecodeTrainings([]byte(data))
	if err != nil {
		r.logger.Error("failed to parse stored trainings", "error", err)
		return []model.Training{}
	}

	r.logger.Debug("trainings loaded", "count", len(trainings))
	return trainings
}

// SaveAppSettings stores the app settings.
func (r *Records) SaveAppSettings(settings model.AppSettings) error {
	data, err := json.Marshal(settings.Normalize())
	if err != nil {
		r.logger.Error("failed to encode app settings", "error", err)
		return fmt.Errorf("encode app settings: %w", err)
	}

	if err := r.kv.Set(SettingsKey, string(data)); err != nil {
		r.logger.Error("failed to save app settings", "error", err)
		return fmt.Errorf("save app settings: %w", err)
	}

	r.logger.Debug("app settings saved")
	return nil
}

// ReplaceAll stores trainings and settings together. Settings are written
// first; if the trainings write then fails, the previous settings are put back
// so the store is never left half replaced.
func (r *Records) ReplaceAll(trainings []model.Training, settings model.AppSettings) error {
	prev, hadPrev, err := r.kv.Get(SettingsKey)
	if err != nil {
		return fmt.Errorf("read app settings: %w", err)
	}

	if err := r.SaveAppSettings(settings); err != nil {
		return err
	}

	if err := r.SaveTrainings(trainings); err != nil {
		if !hadPrev {
			prev = mustDefaultSettingsJSON()
		}
		if rerr := r.kv.Set(SettingsKey, prev); rerr != nil {
			r.logger.Error("failed to restore app settings", "error", rerr)
			return errors.Join(err, fmt.Errorf("restore app settings: %w", rerr))
		}
		r.logger.Warn("restored previous app settings after failed save")
		return err
	}
	return nil
}

func mustDefaultSettingsJSON() string {
	data, err := json.Marshal(model.DefaultAppSettings())
	if err != nil {
		panic(err)
	}
	return string(data)
}

// LoadAppSettings returns the stored settings, or the defaults.
// A stored sound config with missing events is completed from the defaults.
func (r *Records) LoadAppSettings() model.AppSettings {
	data, ok, err := r.kv.Get(SettingsKey)
	if err != nil {
		r.logger.Error("failed to read app settings", "error", err)
		return model.DefaultAppSettings()
	}
	if !ok {
		return model.DefaultAppSettings()
	}

	var settings model.AppSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		r.logger.Error("failed to parse stored app settings", "error", err)
		return model.DefaultAppSettings()
	}

	r.logger.Debug("app settings loaded")
	return settings.Normalize()
}
