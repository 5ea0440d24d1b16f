package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hiit/internal/audio"
	"github.com/jmylchreest/hiit/internal/store"
)

var cueOpts struct {
	follow bool
}

var cueCmd = &cobra.Command{
	Use:   "cue [event]",
	Short: "Play the sound configured for a timer event",
	Long: `Play the sound configured for a timer event.

Events: midpoint, countdown, transition.

With --follow, events are read from stdin one per line until EOF or
interrupt. Settings changes made by other hiit commands are picked up
while following.

Examples:
  hiit cue transition
  my-timer | hiit cue --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCue,
}

func init() {
	rootCmd.AddCommand(cueCmd)

	cueCmd.Flags().BoolVarP(&cueOpts.follow, "follow", "f", false,
		"Read events from stdin, one per line")
}

func runCue(cmd *cobra.Command, args []string) error {
	if cueOpts.follow && len(args) > 0 {
		return fmt.Errorf("an event argument cannot be combined with --follow")
	}
	if !cueOpts.follow && len(args) == 0 {
		return fmt.Errorf("specify an event or --follow")
	}

	manager := audio.NewManager(newPlayer(), records.LoadAppSettings().SoundConfig, logger)
	manager.SetVolume(cfg.Audio.ToneVolume)

	if !cueOpts.follow {
		event, err := audio.ParseEvent(args[0])
		if err != nil {
			return err
		}
		manager.PlayForEvent(event)
		return nil
	}

	return followCues(cmd.Context(), cmd.InOrStdin(), manager)
}

// followCues plays a cue for every event line read from r.
func followCues(ctx context.Context, r io.Reader, manager *audio.Manager) error {
	reload := func() {
		manager.UpdateConfig(records.LoadAppSettings().SoundConfig)
	}

	// Only the file backend can be watched; others reload before each cue
	reloadEachCue := true
	if cfg.Storage.Backend == string(store.BackendFile) {
		watcher, err := store.NewFileWatcher(storagePath, reload)
		if err != nil {
			logger.Warn("failed to create settings watcher", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("failed to watch settings", "path", storagePath, "error", err)
		} else {
			defer func() { _ = watcher.Stop() }()
			reloadEachCue = false
		}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("failed to read events", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			event, err := audio.ParseEvent(line)
			if err != nil {
				logger.Warn("ignoring unknown event", "line", line)
				continue
			}

			if reloadEachCue {
				reload()
			}
			manager.PlayForEvent(event)
		}
	}
}
