package pn532

// Normal Information Frame layout, PN532 UM0701-02 §6.2.1.
const (
	preamble0 = 0x00
	preamble1 = 0x00
	preamble2 = 0xFF
	postamble = 0x00

	hostToPN532 = 0xD4
	pn532ToHost = 0xD5

	// frameOverhead is the number of bytes in a frame beyond the payload:
	// preamble(3) + LEN(1) + LCS(1) + direction(1) + command(1) + DCS(1) + postamble(1).
	frameOverhead = 9
)

// ackFrame is the fixed six-byte sequence the device sends to confirm
// receipt of a host command, and the sequence the host writes to force the
// device to abort whatever it is doing.
var ackFrame = [6]byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}

// nackFrame is only ever emitted by the device, asking the host to resend;
// the host side never writes it, but it is useful for tests.
var nackFrame = [6]byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}

// errorFrame is the device's fixed LEN=1 syntax-error frame.
var errorFrame = [8]byte{0x00, 0x00, 0xFF, 0x01, 0xFF, 0x7F, 0x81, 0x00}

// toChecksum is the PN532 checksum primitive: two's complement of the sum
// of the covered bytes.
func toChecksum(sum byte) byte {
	return ^sum + 1
}

// buildFrame writes a complete frame for cmd/payload into buf[0:] and
// returns the number of bytes written. The caller must ensure
// len(buf) >= frameOverhead+len(payload).
func buildFrame(buf []byte, cmd Command, payload []byte) int {
	d := len(payload)
	n := frameOverhead + d
	_ = buf[n-1] // bounds check hint, mirrors buffer-invariant assertions elsewhere in the core

	buf[0] = preamble0
	buf[1] = preamble1
	buf[2] = preamble2
	length := byte(d + 2) // direction + command
	buf[3] = length
	buf[4] = toChecksum(length)
	buf[5] = hostToPN532
	buf[6] = byte(cmd)
	copy(buf[7:7+d], payload)

	sum := hostToPN532 + byte(cmd)
	for _, b := range payload {
		sum += b
	}
	buf[7+d] = toChecksum(sum)
	buf[8+d] = postamble
	return n
}

// parseResponse validates buf, which must have exactly
// frameOverhead+responseLen bytes, as a response to sentCmd. On success it
// returns a slice of buf holding only the payload bytes.
func parseResponse(buf []byte, sentCmd Command) ([]byte, error) {
	if len(buf) < 6 {
		return nil, ErrBufTooSmall
	}
	if buf[0] != preamble0 || buf[1] != preamble1 || buf[2] != preamble2 {
		return nil, ErrBadResponseFrame
	}
	length := buf[3]
	lcs := buf[4]
	if byte(length+lcs) != 0 {
		return nil, ErrCrcError
	}
	if length == 0 {
		return nil, ErrBadResponseFrame
	}
	if length == 1 {
		return nil, ErrSyntax
	}
	postIdx := 6 + int(length)
	if postIdx >= len(buf) {
		return nil, ErrBufTooSmall
	}
	if buf[postIdx] != postamble {
		return nil, ErrBadResponseFrame
	}
	if buf[5] != pn532ToHost {
		return nil, ErrBadResponseFrame
	}
	if buf[6] != byte(sentCmd)+1 {
		return nil, ErrBadResponseFrame
	}
	var sum byte
	for i := 5; i < 5+int(length)+1; i++ {
		sum += buf[i]
	}
	if sum != 0 {
		return nil, ErrCrcError
	}
	return buf[7 : 5+int(length)], nil
}

func isAck(buf []byte) bool {
	if len(buf) != len(ackFrame) {
		return false
	}
	for i, b := range ackFrame {
		if buf[i] != b {
			return false
		}
	}
	return true
}
