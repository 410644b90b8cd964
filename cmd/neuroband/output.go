package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/srg/neuroband/pkg/band"
)

var (
	batteryTag = color.New(color.FgYellow).Sprint("battery")
	controlTag = color.New(color.FgCyan).Sprint("control")
	eegTag     = color.New(color.FgGreen).Sprint("eeg")
	ppgTag     = color.New(color.FgRed).Sprint("ppg")
	accelTag   = color.New(color.FgMagenta).Sprint("accel")
	gyroTag    = color.New(color.FgMagenta).Sprint("gyro")
)

// printer renders decoded signals to stdout. Sample streams are opt-in;
// battery and control traffic is always shown.
type printer struct {
	showSamples bool
	showMotion  bool

	mu      sync.Mutex
	dropped bool
}

func newPrinter(showSamples, showMotion bool) *printer {
	return &printer{showSamples: showSamples, showMotion: showMotion}
}

// Hooks wires the printer into a session. onDrop fires after an
// unsolicited transport disconnect.
func (p *printer) Hooks(onDrop func()) band.Hooks {
	hooks := band.Hooks{
		OnBattery: func(pct float64) {
			fmt.Printf("%s %.1f%%\n", batteryTag, pct)
		},
		OnControl: func(frag string) {
			fmt.Printf("%s %s\n", controlTag, frag)
		},
		OnDisconnected: func() {
			p.mu.Lock()
			p.dropped = true
			p.mu.Unlock()
			onDrop()
		},
	}
	if p.showSamples {
		hooks.OnEEG = func(ch int, samples []uint16) {
			fmt.Printf("%s[%d] %v\n", eegTag, ch, samples)
		}
		hooks.OnPPG = func(ch int, samples []uint32) {
			fmt.Printf("%s[%d] %v\n", ppgTag, ch, samples)
		}
	}
	if p.showMotion {
		hooks.OnAccelerometer = func(t band.Triple) {
			fmt.Printf("%s x=%+.3f y=%+.3f z=%+.3f\n", accelTag, t.X, t.Y, t.Z)
		}
		hooks.OnGyroscope = func(t band.Triple) {
			fmt.Printf("%s x=%+.2f y=%+.2f z=%+.2f\n", gyroTag, t.X, t.Y, t.Z)
		}
	}
	return hooks
}

// Dropped reports whether the transport dropped the link.
func (p *printer) Dropped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Banner prints the resolved session capabilities.
func (p *printer) Banner(caps band.Capabilities) {
	bold := color.New(color.Bold)
	source := "live"
	if caps.Mock {
		source = "mock"
	}
	fmt.Fprintf(os.Stderr, "%s model=%s eeg=%d-bit ppg=%t preset=%s source=%s\n",
		bold.Sprint("connected:"), caps.Model, caps.EEGBits, caps.HasPPG, caps.Preset, source)
}
