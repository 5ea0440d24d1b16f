package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/exchange"
	"github.com/jmylchreest/hiit/internal/store"
)

var importOpts struct {
	save     bool
	noBackup bool
}

// importCmd represents the import command group.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import trainings and settings from JSON files",
	Long: `Validate a JSON export and optionally replace the stored data with it.

Without --save the file is only checked. With --save the current data is
first exported to a backup file in the data directory, then replaced.

Examples:
  hiit import all hiit-data-2024-01-05-090307.json
  hiit import trainings trainings.json --save`,
}

var importTrainingsCmd = &cobra.Command{
	Use:   "trainings <file>",
	Short: "Import a trainings export",
	Args:  cobra.ExactArgs(1),
	RunE:  importTrainingsRun,
}

var importSettingsCmd = &cobra.Command{
	Use:   "settings <file>",
	Short: "Import an app settings export",
	Args:  cobra.ExactArgs(1),
	RunE:  importSettingsRun,
}

var importAllCmd = &cobra.Command{
	Use:   "all <file>",
	Short: "Import a unified export",
	Args:  cobra.ExactArgs(1),
	RunE:  importAllRun,
}

func init() {
	rootCmd.AddCommand(importCmd)

	for _, cmd := range []*cobra.Command{importTrainingsCmd, importSettingsCmd, importAllCmd} {
		importCmd.AddCommand(cmd)
		cmd.Flags().BoolVar(&importOpts.save, "save", false,
			"Replace the stored data with the imported data")
		cmd.Flags().BoolVar(&importOpts.noBackup, "no-backup", false,
			"Do not back up the stored data before saving")
	}
}

func importTrainingsRun(cmd *cobra.Command, args []string) error {
	file, closer, err := exchange.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	trainings, err := exchange.NewImporter(logger).ImportTrainings(cmd.Context(), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d training(s)\n", file.Name, len(trainings))

	return saveImport(cmd, func() error {
		return records.SaveTrainings(trainings)
	})
}

func importSettingsRun(cmd *cobra.Command, args []string) error {
	file, closer, err := exchange.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	settings, err := exchange.NewImporter(logger).ImportAppSettings(cmd.Context(), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: app settings\n", file.Name)
	printSoundConfig(cmd, settings.SoundConfig)

	return saveImport(cmd, func() error {
		return records.SaveAppSettings(settings)
	})
}

func importAllRun(cmd *cobra.Command, args []string) error {
	file, closer, err := exchange.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	imported, err := exchange.NewImporter(logger).ImportAll(cmd.Context(), file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d training(s) and app settings\n", file.Name, len(imported.Trainings))
	printSoundConfig(cmd, imported.Settings.SoundConfig)

	return saveImport(cmd, func() error {
		return records.ReplaceAll(imported.Trainings, imported.Settings)
	})
}

// saveImport runs save when --save is set, after backing up the stored data.
func saveImport(cmd *cobra.Command, save func() error) error {
	if !importOpts.save {
		fmt.Fprintln(cmd.OutOrStdout(), "File is valid, use --save to replace the stored data")
		return nil
	}

	importID := ""
	if !importOpts.noBackup && cfg.Storage.Backend != string(store.BackendMemory) {
		id, err := backupStoredData(cmd)
		if err != nil {
			return err
		}
		importID = id
	}

	if err := save(); err != nil {
		return fmt.Errorf("failed to save imported data: %w", err)
	}

	logger.Info("import saved", "import_id", importID)
	fmt.Fprintln(cmd.OutOrStdout(), "Imported data saved")
	return nil
}

// backupStoredData exports the stored data to the backups directory and
// returns the backup id.
func backupStoredData(cmd *cobra.Command) (string, error) {
	filename, id, err := exchange.BackupFilename(time.Now())
	if err != nil {
		return "", err
	}

	dir := filepath.Join(dataDir(), "backups")
	exporter := exchange.NewExporter(exchange.DirSink{Dir: dir}, logger)
	_, size, err := exporter.ExportAll(records.LoadTrainings(), records.LoadAppSettings(), filename)
	if err != nil {
		return "", fmt.Errorf("failed to back up stored data: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backed up stored data to %s (%s)\n",
		filepath.Join(dir, filename), humanize.Bytes(uint64(size)))
	return id, nil
}
