// Package goble adapts the go-ble stack to the band transport
// interfaces. It is the only package that touches platform BLE APIs;
// the core driver depends solely on band.Transport and band.Link.
package goble

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/neuroband/pkg/band"
)

// Transport discovers the headband over BLE and hands back a connected
// link with its GATT profile resolved.
type Transport struct {
	logger *logrus.Logger
}

func NewTransport(logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	return &Transport{logger: logger}
}

// Discover scans for a peripheral advertising the given service,
// connects and discovers its full profile. The caller's context bounds
// the whole sequence.
func (t *Transport) Discover(ctx context.Context, serviceID string) (band.Link, error) {
	svcUUID, err := ble.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("parsing service uuid %q: %w", serviceID, err)
	}

	dev, err := DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("creating BLE device: %w", err)
	}
	ble.SetDefaultDevice(dev)

	t.logger.WithField("service", serviceID).Info("Scanning for advertising peripheral...")
	client, err := ble.Connect(ctx, func(a ble.Advertisement) bool {
		for _, s := range a.Services() {
			if s.Equal(svcUUID) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to peripheral: %w", err)
	}

	t.logger.WithField("address", client.Addr().String()).Debug("Discovering profile...")
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			t.logger.WithField("error", cancelErr).Warn("Failed to cancel connection after discovery failure")
		}
		return nil, fmt.Errorf("discovering profile: %w", err)
	}

	l := &link{
		logger: t.logger,
		client: client,
		chars:  make(map[string]*ble.Characteristic),
	}
	for _, svc := range profile.Services {
		for _, c := range svc.Characteristics {
			l.chars[normalizeUUID(c.UUID.String())] = c
		}
	}

	t.logger.WithFields(logrus.Fields{
		"address":         client.Addr().String(),
		"characteristics": len(l.chars),
	}).Info("Peripheral connected")

	go l.watch()
	return l, nil
}

// link is one live BLE connection exposed through the band.Link
// interface. Characteristic lookup is by normalized UUID.
type link struct {
	logger *logrus.Logger
	client ble.Client
	chars  map[string]*ble.Characteristic

	mu     sync.Mutex
	onDrop func()
	closed bool
}

func (l *link) Endpoints() []string {
	out := make([]string, 0, len(l.chars))
	for id := range l.chars {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *link) Subscribe(endpointID string, onNotify func(data []byte)) error {
	c, err := l.find(endpointID)
	if err != nil {
		return err
	}
	if err := l.client.Subscribe(c, false, onNotify); err != nil {
		return fmt.Errorf("subscribing to %s: %w", endpointID, err)
	}
	return nil
}

func (l *link) Write(endpointID string, data []byte) error {
	c, err := l.find(endpointID)
	if err != nil {
		return err
	}
	if err := l.client.WriteCharacteristic(c, data, false); err != nil {
		return fmt.Errorf("writing to %s: %w", endpointID, err)
	}
	return nil
}

func (l *link) SetDisconnectHandler(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDrop = fn
}

func (l *link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	return l.client.CancelConnection()
}

func (l *link) find(endpointID string) (*ble.Characteristic, error) {
	c, ok := l.chars[normalizeUUID(endpointID)]
	if !ok {
		return nil, fmt.Errorf("characteristic %s not present on peripheral", endpointID)
	}
	return c, nil
}

// watch surfaces transport-initiated disconnects. A caller-initiated
// Close also closes the Disconnected channel, so the drop callback only
// fires when the link was not closed locally first.
func (l *link) watch() {
	dc, ok := l.client.(interface{ Disconnected() <-chan struct{} })
	if !ok {
		l.logger.Debug("Client does not expose a Disconnected channel")
		return
	}
	<-dc.Disconnected()

	l.mu.Lock()
	closed := l.closed
	fn := l.onDrop
	l.mu.Unlock()
	if !closed && fn != nil {
		l.logger.Warn("Peripheral connection lost")
		fn()
	}
}

// normalizeUUID lowercases and strips dashes so lookups survive the
// differing UUID renderings across platforms.
func normalizeUUID(uuid string) string {
	return strings.ReplaceAll(strings.ToLower(uuid), "-", "")
}
