package pn532

import (
	"testing"
	"time"
)

// firmwareAckThenResponse scripts a transport that answers
// GetFirmwareVersionRequest the way a real PN532 does (see SPEC_FULL.md §8
// scenario 1).
func firmwareAckThenResponse() *scriptedTransport {
	return &scriptedTransport{
		readyScript: []Ready{ReadyOK, ReadyOK},
		reads: [][]byte{
			ackFrame[:],
			{0x00, 0x00, 0xFF, 0x06, 0xFA, 0xD5, 0x03, 0x32, 0x01, 0x06, 0x07, 0xE8, 0x00},
		},
	}
}

// TestTransactionSequencing is the §8 "transaction sequencing" property: a
// single Process call produces write -> read(ACK) -> read(response) in
// that order and no further transport calls.
func TestTransactionSequencing(t *testing.T) {
	tr := firmwareAckThenResponse()
	d := New(tr, &WallClockTimer{}, 32)

	payload, err := d.Process(GetFirmwareVersionRequest, 4, time.Second)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []byte{0x32, 0x01, 0x06, 0x07}
	if string(payload) != string(want) {
		t.Fatalf("payload = % x, want % x", payload, want)
	}
	if len(tr.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(tr.writes))
	}
	if tr.readIdx != 2 {
		t.Fatalf("reads = %d, want 2", tr.readIdx)
	}
}

func TestProcessSAMConfiguration(t *testing.T) {
	tr := &scriptedTransport{
		readyScript: []Ready{ReadyOK, ReadyOK},
		reads: [][]byte{
			ackFrame[:],
			{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD5, 0x15, 0x16, 0x00},
		},
	}
	d := New(tr, &WallClockTimer{}, 32)
	_, err := d.Process(SAMConfigurationRequest(SAMModeNormal, 0, true), 0, time.Second)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	wantFrame := []byte{0x00, 0x00, 0xFF, 0x05, 0xFB, 0xD4, 0x14, 0x01, 0x00, 0x01, 0x16, 0x00}
	if string(tr.writes[0]) != string(wantFrame) {
		t.Fatalf("wrote % x, want % x", tr.writes[0], wantFrame)
	}
}

func TestProcessErrorFrame(t *testing.T) {
	const responseLen = 1
	// The device's error frame (8 bytes) is shorter than a normal
	// responseLen=1 frame (10 bytes); the parser decides Syntax from the
	// LEN byte alone, before it would ever look at the padding.
	padded := make([]byte, frameOverhead+responseLen)
	copy(padded, errorFrame[:])

	tr := &scriptedTransport{
		readyScript: []Ready{ReadyOK, ReadyOK},
		reads: [][]byte{
			ackFrame[:],
			padded,
		},
	}
	d := New(tr, &WallClockTimer{}, 32)
	_, err := d.Process(InListOneISOATargetRequest, responseLen, time.Second)
	if err != ErrSyntax {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func TestProcessBadAck(t *testing.T) {
	tr := &scriptedTransport{
		readyScript: []Ready{ReadyOK},
		reads: [][]byte{
			{0, 0, 0, 0, 0, 0},
		},
	}
	d := New(tr, &WallClockTimer{}, 32)
	_, err := d.Process(GetFirmwareVersionRequest, 4, time.Second)
	if err != ErrBadAck {
		t.Fatalf("err = %v, want ErrBadAck", err)
	}
}

// TestTimeoutAck is the §8 timeout scenario: a transport that never
// becomes ready causes Process to return ErrTimeoutAck and never attempts
// to read the response.
func TestTimeoutAck(t *testing.T) {
	tr := &neverReadyTransport{}
	timer := &fakeTimer{pollsUntilExpiry: 5}
	d := New(tr, timer, 32)

	_, err := d.Process(GetFirmwareVersionRequest, 4, time.Millisecond)
	if err != ErrTimeoutAck {
		t.Fatalf("err = %v, want ErrTimeoutAck", err)
	}
	if tr.reads != 0 {
		t.Fatalf("reads = %d, want 0", tr.reads)
	}
	if timer.polls < 5 {
		t.Fatalf("timer polled %d times, want >= 5", timer.polls)
	}
}

func TestTimeoutResponse(t *testing.T) {
	tr := &scriptedTransport{
		readyScript: []Ready{ReadyOK, Pending, Pending, Pending},
		reads: [][]byte{
			ackFrame[:],
		},
	}
	timer := &fakeTimer{pollsUntilExpiry: 2}
	d := New(tr, timer, 32)

	_, err := d.Process(GetFirmwareVersionRequest, 4, time.Millisecond)
	if err != ErrTimeoutResponse {
		t.Fatalf("err = %v, want ErrTimeoutResponse", err)
	}
}

func TestProcessNoResponse(t *testing.T) {
	tr := &scriptedTransport{
		readyScript: []Ready{ReadyOK},
		reads:       [][]byte{ackFrame[:]},
	}
	d := New(tr, &WallClockTimer{}, 32)
	if err := d.ProcessNoResponse(Request{Command: PowerDown, Data: []byte{0x20}}, time.Second); err != nil {
		t.Fatalf("ProcessNoResponse: %v", err)
	}
	if len(tr.writes) != 1 || tr.readIdx != 1 {
		t.Fatalf("unexpected transport call counts: writes=%d reads=%d", len(tr.writes), tr.readIdx)
	}
}

func TestAbortWritesAckLiteral(t *testing.T) {
	tr := &scriptedTransport{readyScript: []Ready{ReadyOK}}
	d := New(tr, &WallClockTimer{}, 32)
	if err := d.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if string(tr.writes[0]) != string(ackFrame[:]) {
		t.Fatalf("Abort wrote % x, want ACK literal % x", tr.writes[0], ackFrame[:])
	}
}

func TestProcessAsync(t *testing.T) {
	tr := firmwareAckThenResponse()
	d := New(tr, nil, 32)
	a := d.ProcessAsync(GetFirmwareVersionRequest, 4)

	_, done, err := a.Poll() // send
	if done || err != nil {
		t.Fatalf("Poll#1: done=%v err=%v", done, err)
	}
	_, done, err = a.Poll() // ack
	if done || err != nil {
		t.Fatalf("Poll#2: done=%v err=%v", done, err)
	}
	payload, done, err := a.Poll() // response
	if !done || err != nil {
		t.Fatalf("Poll#3: done=%v err=%v", done, err)
	}
	want := []byte{0x32, 0x01, 0x06, 0x07}
	if string(payload) != string(want) {
		t.Fatalf("payload = % x, want % x", payload, want)
	}
}

func TestBufTooSmallPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for undersized buffer")
		}
	}()
	tr := &scriptedTransport{readyScript: []Ready{ReadyOK}}
	d := New(tr, &WallClockTimer{}, 9) // too small for any payload
	d.Send(Request{Command: SAMConfiguration, Data: []byte{0x01, 0x00, 0x01}})
}
