package broker

import "errors"

// ErrDeviceNotFound is returned when a device name has no registered
// Device.
var ErrDeviceNotFound = errors.New("broker: device not found")
