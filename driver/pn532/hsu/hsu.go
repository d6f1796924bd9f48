// Package hsu implements the pn532.Transport capability set over the
// PN532's High-Speed UART link, opening the port the same way
// driver/mjolnir.Open opens its engraver's serial port in the teacher repo
// (github.com/tarm/serial, a plain Name+Baud config).
package hsu

import (
	"fmt"
	"io"

	"github.com/tarm/serial"

	"github.com/ptrswitch/pn532/driver/pn532"
)

// BaudRate is the PN532's documented HSU default, 8-N-1.
const BaudRate = 115200

// WakeUpPattern is the 16-byte sequence that wakes a PN532 on HSU after
// PowerDown or before its first transaction on a freshly-powered device.
var WakeUpPattern = [16]byte{
	0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// byteAvailable is implemented by serial ports (such as *serial.Port) that
// can report how many bytes are waiting without blocking. When the
// underlying io.ReadWriter doesn't implement it, WaitReady degrades to
// reporting ReadyOK unconditionally and leaves blocking to Read, matching
// HSU's "it's just a stream" nature.
type byteAvailable interface {
	Available() (int, error)
}

// Transport implements pn532.Transport and pn532.WakeUpper over a serial
// port opened at 115200 8-N-1.
type Transport struct {
	port   io.ReadWriteCloser
	closer func() error
}

// Open opens dev at BaudRate 8-N-1 using github.com/tarm/serial.
func Open(dev string) (*Transport, error) {
	c := &serial.Config{Name: dev, Baud: BaudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("pn532/hsu: %w", err)
	}
	return New(s), nil
}

// New wraps an already-open serial connection, for callers that manage the
// OS handle themselves (tests, or a non-tarm serial stack).
func New(port io.ReadWriteCloser) *Transport {
	return &Transport{port: port, closer: port.Close}
}

func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer()
}

// Write performs a blocking write of the whole frame.
func (t *Transport) Write(frame []byte) error {
	if _, err := t.port.Write(frame); err != nil {
		return fmt.Errorf("pn532/hsu: write: %w", err)
	}
	return nil
}

// WaitReady reports ready iff the OS-level input buffer has at least one
// byte available.
func (t *Transport) WaitReady() (pn532.Ready, error) {
	ba, ok := t.port.(byteAvailable)
	if !ok {
		return pn532.ReadyOK, nil
	}
	n, err := ba.Available()
	if err != nil {
		return pn532.ReadyErr, fmt.Errorf("pn532/hsu: available: %w", err)
	}
	if n > 0 {
		return pn532.ReadyOK, nil
	}
	return pn532.Pending, nil
}

// Read performs a blocking read of exactly len(out) bytes.
func (t *Transport) Read(out []byte) error {
	if _, err := io.ReadFull(t.port, out); err != nil {
		return fmt.Errorf("pn532/hsu: read: %w", err)
	}
	return nil
}

// WakeUp emits the documented 16-byte wake pattern.
func (t *Transport) WakeUp() error {
	if _, err := t.port.Write(WakeUpPattern[:]); err != nil {
		return fmt.Errorf("pn532/hsu: wake up: %w", err)
	}
	return nil
}

var _ pn532.Transport = (*Transport)(nil)
var _ pn532.WakeUpper = (*Transport)(nil)
