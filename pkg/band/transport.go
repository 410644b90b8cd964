package band

import "context"

// SampleEvent is one raw notification tagged with its source endpoint,
// as queued between the transport callbacks and the decode loop.
type SampleEvent struct {
	EndpointID string
	Data       []byte
}

// Link is an open connection to the peripheral. Implementations deliver
// notification payloads on the callback registered via Subscribe; the
// payload slice is only valid for the duration of the callback.
type Link interface {
	// Endpoints lists the endpoint IDs discovered on the link.
	Endpoints() []string

	// Subscribe registers for notifications from one endpoint.
	Subscribe(endpointID string, onNotify func(data []byte)) error

	// Write sends bytes to an endpoint.
	Write(endpointID string, data []byte) error

	// SetDisconnectHandler registers a callback fired once when the
	// transport drops the link without a caller-initiated Close.
	SetDisconnectHandler(fn func())

	// Close tears the link down. Idempotent.
	Close() error
}

// Transport discovers a peripheral advertising the given service and
// returns an open link to it. The core depends only on this interface;
// platform adapters implement it.
type Transport interface {
	Discover(ctx context.Context, serviceID string) (Link, error)
}
