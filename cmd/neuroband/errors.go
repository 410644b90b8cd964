package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/srg/neuroband/pkg/band"
)

// Command-level errors
var (
	// ErrConnectionLost indicates the headband dropped the link while
	// streaming, as opposed to a connect-time failure.
	ErrConnectionLost = errors.New("connection lost")
)

// FormatUserError maps driver errors onto short, actionable messages.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, band.ErrTransportUnavailable):
		return fmt.Sprintf("cannot reach the headband: %v (is Bluetooth powered on and the band awake?)", err)
	case errors.Is(err, band.ErrMockDataUnavailable):
		return fmt.Sprintf("replay dataset unusable: %v", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out connecting to the headband"
	default:
		return err.Error()
	}
}
