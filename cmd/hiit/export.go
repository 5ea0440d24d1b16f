package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/exchange"
)

var exportOpts struct {
	out  string
	name string
}

// exportCmd represents the export command group.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trainings and settings to JSON files",
	Long: `Export stored data to a JSON file.

Files are named with the export time unless --name is given:
  hiit-trainings-YYYY-MM-DD-HHmmss.json
  hiit-app-settings-YYYY-MM-DD-HHmmss.json
  hiit-data-YYYY-MM-DD-HHmmss.json

Examples:
  hiit export all
  hiit export trainings --out ~/backups
  hiit export settings --name settings.json`,
}

var exportTrainingsCmd = &cobra.Command{
	Use:   "trainings",
	Short: "Export the stored trainings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(e *exchange.Exporter) (string, int, error) {
			return e.ExportTrainings(records.LoadTrainings(), exportOpts.name)
		})
	},
}

var exportSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Export the app settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(e *exchange.Exporter) (string, int, error) {
			return e.ExportAppSettings(records.LoadAppSettings(), exportOpts.name)
		})
	},
}

var exportAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Export trainings and settings in one file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(e *exchange.Exporter) (string, int, error) {
			return e.ExportAll(records.LoadTrainings(), records.LoadAppSettings(), exportOpts.name)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	for _, cmd := range []*cobra.Command{exportTrainingsCmd, exportSettingsCmd, exportAllCmd} {
		exportCmd.AddCommand(cmd)
		cmd.Flags().StringVarP(&exportOpts.out, "out", "o", "",
			"Directory to write to (default from config, else current directory)")
		cmd.Flags().StringVar(&exportOpts.name, "name", "",
			"File name (default: timestamped name)")
	}
}

func runExport(cmd *cobra.Command, export func(*exchange.Exporter) (string, int, error)) error {
	dir := exportOpts.out
	if dir == "" {
		dir = cfg.Export.Dir
	}

	exporter := exchange.NewExporter(exchange.DirSink{Dir: dir}, logger)
	filename, size, err := export(exporter)
	if err != nil {
		return err
	}

	if dir == "" {
		dir = "."
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%s)\n",
		filepath.Join(dir, filename), humanize.Bytes(uint64(size)))
	return nil
}
