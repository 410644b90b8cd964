//go:build linux

package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// DeviceFactory creates the platform ble.Device. Overridable in tests.
var DeviceFactory = func() (ble.Device, error) {
	return linux.NewDevice()
}
