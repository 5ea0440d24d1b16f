package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/model"
	"github.com/jmylchreest/hiit/internal/store"
)

var trainingsOpts struct {
	json   bool
	dryRun bool
}

// trainingsCmd represents the trainings command group.
var trainingsCmd = &cobra.Command{
	Use:   "trainings",
	Short: "List and clear stored trainings",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to listing
		return trainingsListRun(cmd, args)
	},
}

var trainingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored trainings",
	Args:  cobra.NoArgs,
	RunE:  trainingsListRun,
}

var trainingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored trainings",
	Long: `Remove all stored trainings.

Export them first with 'hiit export trainings' if you want to keep a copy.`,
	Args: cobra.NoArgs,
	RunE: trainingsClearRun,
}

func init() {
	rootCmd.AddCommand(trainingsCmd)
	trainingsCmd.AddCommand(trainingsListCmd)
	trainingsCmd.AddCommand(trainingsClearCmd)

	for _, cmd := range []*cobra.Command{trainingsCmd, trainingsListCmd} {
		cmd.Flags().BoolVar(&trainingsOpts.json, "json", false,
			"Print the stored trainings as a JSON array")
	}
	trainingsClearCmd.Flags().BoolVar(&trainingsOpts.dryRun, "dry-run", false,
		"Show how many trainings would be removed without removing them")
}

func trainingsListRun(cmd *cobra.Command, args []string) error {
	trainings := records.LoadTrainings()
	out := cmd.OutOrStdout()

	if trainingsOpts.json {
		data, err := model.EncodeTrainings(trainings, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(trainings) == 0 {
		fmt.Fprintln(out, "No trainings stored")
		return nil
	}

	for i, t := range trainings {
		data, err := model.EncodeTrainings([]model.Training{t}, false)
		if err != nil {
			return err
		}
		// Strip the enclosing brackets
		fmt.Fprintf(out, "%3d  %s\n", i+1, data[1:len(data)-1])
	}

	fmt.Fprintf(out, "\n%d training(s)%s\n", len(trainings), storageModified())
	return nil
}

func trainingsClearRun(cmd *cobra.Command, args []string) error {
	count := len(records.LoadTrainings())

	if trainingsOpts.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would remove %d training(s)\n", count)
		return nil
	}

	if err := records.SaveTrainings([]model.Training{}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d training(s)\n", count)
	return nil
}

// storageModified describes when the storage file last changed, or returns
// an empty string when there is no file.
func storageModified() string {
	if cfg.Storage.Backend == string(store.BackendMemory) {
		return ""
	}

	info, err := os.Stat(storagePath)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(", last saved %s", humanize.Time(info.ModTime()))
}
