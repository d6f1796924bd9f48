// Package pn532 implements the framed request/response protocol engine for
// the NXP PN532 NFC controller and the link-abstraction layer that lets the
// engine drive SPI, I2C or HSU transports interchangeably.
//
// The engine itself never allocates once constructed: New takes the buffer
// size up front and every transaction reuses the same backing array, so the
// package is usable from a heap-constrained embedded build as well as a
// hosted OS.
package pn532

import "time"

// state is the transaction engine's internal position, per spec.md §4.2.
type state int

const (
	stateIdle state = iota
	stateSent
	stateAckReceived
	stateResponseReceived
)

// Driver owns a transport, an optional timer, and a fixed-size frame
// buffer. Only one transaction may be in flight at a time; the buffer is
// mutably borrowed for the duration of any Process* call, so the slice a
// Process* call returns is only valid until the next call.
type Driver struct {
	transport Transport
	timer     Timer
	buf       []byte
	state     state
}

// New constructs a Driver with a frame buffer of bufSize bytes. timer may
// be nil; in that case the timeout-taking methods (Process,
// ProcessNoResponse) must not be called -- use ProcessAsync instead. Per
// spec.md §3, bufSize must be at least 9 plus the larger of any request
// payload or expected response length ever passed to this Driver; violating
// that invariant is a programming error, detected here and at each call
// site rather than risked as corrupt I/O.
func New(transport Transport, timer Timer, bufSize int) *Driver {
	if bufSize < frameOverhead {
		panic("pn532: bufSize too small to hold a single frame")
	}
	return &Driver{
		transport: transport,
		timer:     timer,
		buf:       make([]byte, bufSize),
	}
}

// checkCapacity panics with a clear diagnostic rather than let an
// undersized buffer produce a truncated, corrupt frame on the wire.
func (d *Driver) checkCapacity(need int) {
	if need > len(d.buf) {
		panic("pn532: frame buffer too small for this request/response size")
	}
}

// Send writes req as a framed request. Callers composing their own
// transaction out of the primitives (Send/ReceiveAck/ReceiveResponse) must
// only call the receive methods after the transport reports ready.
func (d *Driver) Send(req Request) error {
	need := frameOverhead + len(req.Data)
	d.checkCapacity(need)
	n := buildFrame(d.buf, req.Command, req.Data)
	if err := d.transport.Write(d.buf[:n]); err != nil {
		return &InterfaceError{Err: err}
	}
	d.state = stateSent
	return nil
}

// ReceiveAck reads six bytes and compares them against the ACK literal.
func (d *Driver) ReceiveAck() error {
	d.checkCapacity(len(ackFrame))
	ack := d.buf[:len(ackFrame)]
	if err := d.transport.Read(ack); err != nil {
		return &InterfaceError{Err: err}
	}
	if !isAck(ack) {
		return ErrBadAck
	}
	d.state = stateAckReceived
	return nil
}

// ReceiveResponse reads exactly responseLen+9 bytes and validates them as a
// response to sentCmd, returning the payload slice on success. The slice
// aliases the Driver's internal buffer and is only valid until the next
// Process*/Send/Receive* call.
func (d *Driver) ReceiveResponse(sentCmd Command, responseLen int) ([]byte, error) {
	need := frameOverhead + responseLen
	d.checkCapacity(need)
	frame := d.buf[:need]
	if err := d.transport.Read(frame); err != nil {
		return nil, &InterfaceError{Err: err}
	}
	payload, err := parseResponse(frame, sentCmd)
	if err != nil {
		return nil, err
	}
	d.state = stateResponseReceived
	return payload, nil
}

// Abort writes the ACK literal to the wire regardless of state. Per the
// PN532 specification this forces the device to discontinue whatever it
// was processing and return to waiting for a fresh command. The Driver's
// local state becomes idle; any response already in flight on the wire is
// the caller's responsibility to drain before the next transaction.
func (d *Driver) Abort() error {
	d.state = stateIdle
	if err := d.transport.Write(ackFrame[:]); err != nil {
		return &InterfaceError{Err: err}
	}
	return nil
}

// waitReady blocks until the transport reports ready, consulting timer for
// the given phase-specific timeout error if timer is non-nil. The countdown
// is started only for the ACK phase, so the response phase spends what is
// left of the same budget.
func (d *Driver) waitReady(timeout time.Duration, onTimeout Error) error {
	if d.timer != nil && onTimeout == ErrTimeoutAck {
		d.timer.Start(timeout)
	}
	for {
		ready, err := d.transport.WaitReady()
		if err != nil {
			return &InterfaceError{Err: err}
		}
		switch ready {
		case ReadyOK:
			return nil
		case ReadyErr:
			return &InterfaceError{Err: err}
		}
		if d.timer != nil && d.timer.Elapsed() {
			return onTimeout
		}
	}
}

// Process runs one full transaction: build and write the frame, wait for
// and validate the ACK, wait for and parse the response. responseLen is the
// maximum expected payload length; the Driver's buffer must be at least
// responseLen+9 bytes. timeout budgets the whole call, split implicitly
// into an ACK phase and a response phase -- expiry in the ACK phase yields
// ErrTimeoutAck without attempting a response read, expiry in the response
// phase yields ErrTimeoutResponse. Bytes of a response frame longer than
// responseLen+9 are left unread on the link; choosing responseLen (and the
// buffer size) generously avoids that.
func (d *Driver) Process(req Request, responseLen int, timeout time.Duration) ([]byte, error) {
	if err := d.Send(req); err != nil {
		return nil, err
	}
	if err := d.waitReady(timeout, ErrTimeoutAck); err != nil {
		return nil, err
	}
	if err := d.ReceiveAck(); err != nil {
		return nil, err
	}
	if err := d.waitReady(timeout, ErrTimeoutResponse); err != nil {
		return nil, err
	}
	payload, err := d.ReceiveResponse(req.Command, responseLen)
	if err != nil {
		return nil, err
	}
	d.state = stateIdle
	return payload, nil
}

// ProcessNoResponse sends req and waits only for its ACK, for commands the
// device acknowledges but does not answer (e.g. TgSetData-style
// fire-and-forget operations).
func (d *Driver) ProcessNoResponse(req Request, timeout time.Duration) error {
	if err := d.Send(req); err != nil {
		return err
	}
	if err := d.waitReady(timeout, ErrTimeoutAck); err != nil {
		return err
	}
	if err := d.ReceiveAck(); err != nil {
		return err
	}
	d.state = stateIdle
	return nil
}

// Async is a suspended transaction produced by ProcessAsync. Poll advances
// it by one step; the caller's ambient scheduler is expected to call Poll
// again once it believes I/O progress is possible, exactly like a Future
// that parks on an I/O readiness notifier. Async performs no suspension of
// its own -- each Poll call is non-blocking beyond what the transport's
// Write/Read themselves do.
type Async struct {
	d           *Driver
	req         Request
	responseLen int
	phase       state
	done        bool
}

// ProcessAsync starts a cooperative transaction with no timer involved;
// see Async.Poll.
func (d *Driver) ProcessAsync(req Request, responseLen int) *Async {
	return &Async{d: d, req: req, responseLen: responseLen, phase: stateIdle}
}

// Poll advances the transaction. While waiting for device readiness it
// returns (nil, false, nil); the caller should try again later. A non-nil
// error or a non-nil payload means the transaction is finished and Poll
// must not be called again.
func (a *Async) Poll() (payload []byte, done bool, err error) {
	if a.done {
		panic("pn532: Async.Poll called after completion")
	}
	switch a.phase {
	case stateIdle:
		if err := a.d.Send(a.req); err != nil {
			a.done = true
			return nil, true, err
		}
		a.phase = stateSent
		return nil, false, nil
	case stateSent:
		ready, err := a.d.transport.WaitReady()
		if err != nil {
			a.done = true
			return nil, true, &InterfaceError{Err: err}
		}
		if ready != ReadyOK {
			if ready == ReadyErr {
				a.done = true
				return nil, true, &InterfaceError{Err: err}
			}
			return nil, false, nil
		}
		if err := a.d.ReceiveAck(); err != nil {
			a.done = true
			return nil, true, err
		}
		a.phase = stateAckReceived
		return nil, false, nil
	case stateAckReceived:
		ready, err := a.d.transport.WaitReady()
		if err != nil {
			a.done = true
			return nil, true, &InterfaceError{Err: err}
		}
		if ready != ReadyOK {
			if ready == ReadyErr {
				a.done = true
				return nil, true, &InterfaceError{Err: err}
			}
			return nil, false, nil
		}
		p, err := a.d.ReceiveResponse(a.req.Command, a.responseLen)
		a.done = true
		if err != nil {
			return nil, true, err
		}
		a.d.state = stateIdle
		return p, true, nil
	default:
		panic("pn532: Async in unreachable phase")
	}
}
