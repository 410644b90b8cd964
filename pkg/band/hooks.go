package band

import "github.com/srg/neuroband/internal/packet"

// Triple is one x/y/z motion sample in physical units (g for the
// accelerometer, deg/s for the gyroscope).
type Triple = packet.Triple

// Hooks are the optional per-signal callbacks a caller registers at
// session construction. All hooks fire from the single decode-loop
// goroutine, in notification arrival order; nil hooks are skipped.
// Callbacks must not block: they run inline with decoding.
type Hooks struct {
	// OnBattery receives the battery charge in percent.
	OnBattery func(percent float64)

	// OnAccelerometer and OnGyroscope fire once per decoded triple
	// (three per motion notification).
	OnAccelerometer func(t Triple)
	OnGyroscope     func(t Triple)

	// OnControl receives each complete, well-formed control fragment as
	// its raw JSON text, after it has been merged into the info map.
	OnControl func(fragment string)

	// OnEEG receives the decoded samples of one EEG notification for the
	// given channel index (0..4).
	OnEEG func(channel int, samples []uint16)

	// OnPPG receives the decoded samples of one PPG notification for the
	// given channel index (0..2).
	OnPPG func(channel int, samples []uint32)

	// OnDisconnected fires exactly once per connection when the session
	// returns to the Disconnected state, whether by an explicit
	// Disconnect call or an unsolicited transport drop.
	OnDisconnected func()
}

// Capabilities describes what the connected hardware supports, as
// resolved by model detection.
type Capabilities struct {
	Model   Model
	EEGBits int
	HasPPG  bool
	Preset  string
	// Mock is true when samples come from the replay engine rather than
	// live hardware. It is the only observable difference between the
	// two paths.
	Mock bool
}
