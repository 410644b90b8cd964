package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srg/neuroband/internal/goble"
	"github.com/srg/neuroband/pkg/band"
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Connect to the headband and stream live signals",
	Long: `Scans for the headband, connects, detects the hardware variant, runs the
streaming handshake and prints decoded signals until interrupted.

Battery and control traffic is always printed; sample streams are opt-in
because of their volume.

Examples:
  # Stream battery and control data
  neuroband stream

  # Include EEG/PPG samples and motion triples
  neuroband stream --samples --motion

  # Verbose protocol logging
  neuroband stream --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runStream,
}

var (
	streamSamples bool
	streamMotion  bool
)

func init() {
	streamCmd.Flags().BoolVar(&streamSamples, "samples", false, "Print decoded EEG/PPG samples")
	streamCmd.Flags().BoolVar(&streamMotion, "motion", false, "Print accelerometer/gyroscope triples")
}

func runStream(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
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

	out := newPrinter(streamSamples, streamMotion)
	session, err := band.NewSession(goble.NewTransport(logger), out.Hooks(cancel), cfg.SessionOptions(), logger)
	if err != nil {
		return err
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.ConnectTimeout.Duration)
	defer connectCancel()
	if err := session.Connect(connectCtx); err != nil {
		return err
	}
	defer session.Disconnect()

	out.Banner(session.Capabilities())
	fmt.Fprintln(os.Stderr, "Streaming. Press Ctrl+C to stop...")

	<-ctx.Done()
	if out.Dropped() {
		return ErrConnectionLost
	}
	return nil
}
