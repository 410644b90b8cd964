// Package band implements the client-side driver for the biosignal
// headband: decoding of the vendor notification formats into physical
// samples, hardware-variant detection, the connect/stream/disconnect
// session state machine, per-channel sample buffering, and a mock replay
// mode that feeds recorded data through the identical decode path.
//
// The package depends only on the Transport interface; platform BLE
// access lives behind an adapter (see internal/goble).
package band

// Vendor GATT identifiers. The primary service advertises under the
// 16-bit alias fe8d; data characteristics share the vendor base UUID.
const (
	ServiceUUID = "0000fe8d-0000-1000-8000-00805f9b34fb"

	ControlUUID       = "273e0001-4c4d-454d-96be-f03bac821358"
	GyroscopeUUID     = "273e0009-4c4d-454d-96be-f03bac821358"
	AccelerometerUUID = "273e000a-4c4d-454d-96be-f03bac821358"
	TelemetryUUID     = "273e000b-4c4d-454d-96be-f03bac821358"
)

// EEGUUIDs are the five EEG channel characteristics, in channel order.
var EEGUUIDs = [5]string{
	"273e0003-4c4d-454d-96be-f03bac821358",
	"273e0004-4c4d-454d-96be-f03bac821358",
	"273e0005-4c4d-454d-96be-f03bac821358",
	"273e0006-4c4d-454d-96be-f03bac821358",
	"273e0007-4c4d-454d-96be-f03bac821358",
}

// PPGUUIDs are the three PPG channel characteristics, in channel order.
var PPGUUIDs = [3]string{
	"273e000f-4c4d-454d-96be-f03bac821358",
	"273e0010-4c4d-454d-96be-f03bac821358",
	"273e0011-4c4d-454d-96be-f03bac821358",
}

// Control-channel commands. The streaming handshake issues
// halt, preset, start, resume, version in that order.
const (
	CmdHalt    = "h"
	CmdResume  = "d"
	CmdStart   = "s"
	CmdVersion = "v1"
)

// Motion axes index the per-axis sample buffers.
const (
	AxisX = iota
	AxisY
	AxisZ
)
