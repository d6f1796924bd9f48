// Package spi implements the pn532.Transport capability set over the
// PN532's SPI link, wiring periph.io/x/conn/v3's spi and gpio packages the
// way driver/lcd and driver/wshat wire the same bus in the teacher repo.
package spi

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/ptrswitch/pn532/driver/pn532"
)

// Logical SPI command bytes, PN532 UM0701-02 §6.2.5. These are the
// post-reversal (logical) values; BitOrder controls whether they are
// reversed before hitting the wire.
const (
	dataWrite = 0x01
	statRead  = 0x02
	dataRead  = 0x03
	statReady = 0x01

	// wakeUpBytes is sized so that clocking them out at the 2MHz connect
	// speed Open uses keeps CS asserted for a touch over the PN532's
	// documented 2ms SPI wake-up window. periph.io's spi.Conn only asserts
	// CS for the duration of a single Tx call -- there's no API to hold it
	// low across a separate time.Sleep -- so the window has to be clocked
	// out in one transaction instead of slept through.
	wakeUpBytes = 512
)

// BitOrder selects whether the host SPI peripheral is already wired
// LSB-first (the PN532's native order) or needs every byte reversed.
type BitOrder int

const (
	// LSBFirst means the peripheral is configured LSB-first already; bytes
	// pass through unchanged.
	LSBFirst BitOrder = iota
	// MSBFirst means the peripheral can only do MSB-first, so every byte
	// on the wire -- commands, frame bytes, and status/data reads -- must
	// be bit-reversed before being sent and after being received.
	MSBFirst
)

// Transport implements pn532.Transport and pn532.WakeUpper over SPI.
type Transport struct {
	port  spi.PortCloser
	conn  spi.Conn
	order BitOrder
	// irq, if non-nil, lets WaitReady poll the PN532's IRQ line (active
	// low) instead of issuing a STATREAD transaction.
	irq gpio.PinIn

	scratch [2]byte
}

// Open opens the named SPI port (empty string picks the first available
// bus, as spireg.Open does) and connects at 2MHz/Mode0/8-bit, matching the
// PN532's documented SPI timing. irq may be nil.
func Open(portName string, order BitOrder, irq gpio.PinIn) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pn532/spi: %w", err)
	}
	p, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("pn532/spi: %w", err)
	}
	c, err := p.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("pn532/spi: %w", err)
	}
	if irq != nil {
		if err := irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
			p.Close()
			return nil, fmt.Errorf("pn532/spi: irq pin: %w", err)
		}
	}
	return &Transport{port: p, conn: c, order: order, irq: irq}, nil
}

func (t *Transport) Close() error {
	return t.port.Close()
}

func (t *Transport) reverse(b []byte) {
	if t.order != MSBFirst {
		return
	}
	for i, v := range b {
		b[i] = bitReverse(v)
	}
}

func bitReverse(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | b&1
		b >>= 1
	}
	return r
}

// Write sends the DATAWRITE preamble byte followed by frame, as one SPI
// transaction.
func (t *Transport) Write(frame []byte) error {
	buf := make([]byte, 1+len(frame))
	buf[0] = dataWrite
	copy(buf[1:], frame)
	t.reverse(buf)
	if err := t.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("pn532/spi: write: %w", err)
	}
	return nil
}

// WaitReady polls the PN532's status byte (or, if an IRQ pin was supplied
// to Open, the IRQ line) for readiness. It never blocks beyond one SPI
// transaction; the transaction engine is responsible for the retry loop.
func (t *Transport) WaitReady() (pn532.Ready, error) {
	if t.irq != nil {
		if t.irq.Read() == gpio.Low {
			return pn532.ReadyOK, nil
		}
		return pn532.Pending, nil
	}
	req := [2]byte{statRead, 0x00}
	t.reverse(req[:])
	resp := t.scratch[:]
	if err := t.conn.Tx(req[:], resp); err != nil {
		return pn532.ReadyErr, fmt.Errorf("pn532/spi: status read: %w", err)
	}
	t.reverse(resp)
	if resp[1] == statReady {
		return pn532.ReadyOK, nil
	}
	return pn532.Pending, nil
}

// Read sends the DATAREAD preamble byte then clocks in len(out) bytes.
func (t *Transport) Read(out []byte) error {
	req := make([]byte, 1+len(out))
	req[0] = dataRead
	resp := make([]byte, 1+len(out))
	t.reverse(req)
	if err := t.conn.Tx(req, resp); err != nil {
		return fmt.Errorf("pn532/spi: read: %w", err)
	}
	t.reverse(resp)
	copy(out, resp[1:])
	return nil
}

// WakeUp holds chip-select low for the PN532 manual's documented >=2ms
// SPI wake-up window by clocking out wakeUpBytes of dummy data in a single
// transaction, rather than releasing CS and sleeping.
func (t *Transport) WakeUp() error {
	dummy := make([]byte, wakeUpBytes)
	if err := t.conn.Tx(dummy, nil); err != nil {
		return fmt.Errorf("pn532/spi: wake up: %w", err)
	}
	return nil
}

var _ pn532.Transport = (*Transport)(nil)
var _ pn532.WakeUpper = (*Transport)(nil)
