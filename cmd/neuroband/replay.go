package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srg/neuroband/pkg/band"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <dataset.csv>",
	Short: "Replay a recorded dataset through the live decode path",
	Long: `Feeds a recorded CSV dataset through the same decoders a live connection
uses, paced by the recorded timestamps. The dataset loops until
interrupted.

Expected CSV layout: a header row, then one row per tick with a
millisecond timestamp column followed by four sample columns.

Examples:
  # Replay a recording, printing decoded EEG samples
  neuroband replay recording.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	// Replay exists to inspect samples, so they print by default.
	out := newPrinter(true, false)
	session, err := band.NewMockSession(args[0], out.Hooks(cancel), cfg.SessionOptions(), logger)
	if err != nil {
		return err
	}

	if err := session.Connect(ctx); err != nil {
		return err
	}
	defer session.Disconnect()

	out.Banner(session.Capabilities())
	fmt.Fprintln(os.Stderr, "Replaying. Press Ctrl+C to stop...")

	<-ctx.Done()
	return nil
}
