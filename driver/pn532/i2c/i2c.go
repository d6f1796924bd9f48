// Package i2c implements the pn532.Transport capability set over the
// PN532's I2C link, wired with periph.io/x/conn/v3's i2c package the same
// way driver/clrc663 wires its I2C bus in the teacher repo (a single fixed
// slave address, register-style Tx calls).
package i2c

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/ptrswitch/pn532/driver/pn532"
)

// Addr is the PN532's fixed I2C slave address.
const Addr uint16 = 0x24

const readyByte = 0x01

// Transport implements pn532.Transport over I2C. It has no WakeUp step: an
// I2C master drives the clock, and the device wakes on the first address
// byte.
type Transport struct {
	bus i2c.BusCloser
	dev *i2c.Dev
	irq gpio.PinIn
}

// Open opens the named I2C bus (empty string picks the first available
// bus, as i2creg.Open does) and binds it to the PN532's fixed address.
// irq may be nil.
func Open(busName string, irq gpio.PinIn) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pn532/i2c: %w", err)
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("pn532/i2c: %w", err)
	}
	if irq != nil {
		if err := irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
			b.Close()
			return nil, fmt.Errorf("pn532/i2c: irq pin: %w", err)
		}
	}
	return &Transport{
		bus: b,
		dev: &i2c.Dev{Bus: b, Addr: Addr},
		irq: irq,
	}, nil
}

func (t *Transport) Close() error {
	return t.bus.Close()
}

// Write performs a single I2C write of frame to the PN532's address.
func (t *Transport) Write(frame []byte) error {
	if err := t.dev.Tx(frame, nil); err != nil {
		return fmt.Errorf("pn532/i2c: write: %w", err)
	}
	return nil
}

// WaitReady reads a single ready byte. A NACK on the address or data phase
// is the PN532's documented way of refusing the bus while busy, so it is
// folded into Pending rather than surfaced as an error; any other I2C
// failure is reported as ReadyErr.
func (t *Transport) WaitReady() (pn532.Ready, error) {
	if t.irq != nil {
		if t.irq.Read() == gpio.Low {
			return pn532.ReadyOK, nil
		}
		return pn532.Pending, nil
	}
	var b [1]byte
	if err := t.dev.Tx(nil, b[:]); err != nil {
		if isNack(err) {
			return pn532.Pending, nil
		}
		return pn532.ReadyErr, fmt.Errorf("pn532/i2c: status read: %w", err)
	}
	if b[0] == readyByte {
		return pn532.ReadyOK, nil
	}
	return pn532.Pending, nil
}

// Read performs one I2C transaction reading a leading ready byte followed
// by len(out) bytes, discarding the ready byte.
func (t *Transport) Read(out []byte) error {
	buf := make([]byte, 1+len(out))
	if err := t.dev.Tx(nil, buf); err != nil {
		return fmt.Errorf("pn532/i2c: read: %w", err)
	}
	copy(out, buf[1:])
	return nil
}

// isNack reports whether err looks like the bus-busy NACK the PN532 is
// documented to return while it has nothing ready, as opposed to a genuine
// link failure. periph.io bus drivers don't have a single canonical NACK
// error type, so this matches on the common "remote I/O error"/"no
// acknowledgment" wording their implementations use.
func isNack(err error) bool {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		msg := strings.ToLower(unwrapped.Error())
		if strings.Contains(msg, "nack") || strings.Contains(msg, "no acknowledgment") || strings.Contains(msg, "remote i/o error") {
			return true
		}
	}
	return false
}

var _ pn532.Transport = (*Transport)(nil)
