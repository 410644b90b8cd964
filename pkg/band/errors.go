package band

import "errors"

// Fatal errors surfaced from Connect. Both leave the session in the
// Disconnected state.
var (
	// ErrTransportUnavailable indicates discovery, link establishment or
	// the mandatory control-endpoint subscription failed.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrMockDataUnavailable indicates the recorded dataset could not be
	// loaded for a mock-mode connect.
	ErrMockDataUnavailable = errors.New("mock dataset unavailable")
)

// ErrModelDetectionTimeout reports that no identifying control data
// arrived within the detection bound. It is never fatal: the session
// proceeds with the baseline decoding profile.
var ErrModelDetectionTimeout = errors.New("model detection timed out")
