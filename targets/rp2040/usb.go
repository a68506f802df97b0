//go:build rp2040

package main

import (
	"errors"
	"machine"
)

var errUSBStalled = errors.New("usb: no progress")

// InitUSB configures machine.Serial, which is USB CDC on the RP2040
func InitUSB() error {
	return machine.Serial.Configure(machine.UARTConfig{})
}

// usbSend writes one frame, handling partial writes. Back-off for a missing
// host is layered on top by core.LinkSender.
func usbSend(frame []byte) error {
	written := 0
	for written < len(frame) {
		n, err := machine.Serial.Write(frame[written:])
		if err == nil && n == 0 {
			err = errUSBStalled
		}
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
