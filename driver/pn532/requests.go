package pn532

// Command is a one-octet PN532 operation code, sent as the seventh byte
// (index 6) of every host-to-device frame.
type Command byte

// The full PN532 command table (UM0701-02 §7).
const (
	Diagnose             Command = 0x00
	GetFirmwareVersion    Command = 0x02
	GetGeneralStatus      Command = 0x04
	ReadRegister          Command = 0x06
	WriteRegister         Command = 0x08
	ReadGPIO              Command = 0x0C
	WriteGPIO             Command = 0x0E
	SetSerialBaudRate     Command = 0x10
	SetParameters         Command = 0x12
	SAMConfiguration      Command = 0x14
	PowerDown             Command = 0x16
	RFConfiguration       Command = 0x32
	RFRegulationTest      Command = 0x58
	InJumpForDEP          Command = 0x56
	InJumpForPSL          Command = 0x46
	InListPassiveTarget   Command = 0x4A
	InATR                 Command = 0x50
	InPSL                 Command = 0x4E
	InDataExchange        Command = 0x40
	InCommunicateThru     Command = 0x42
	InDeselect            Command = 0x44
	InRelease             Command = 0x52
	InSelect              Command = 0x54
	InAutoPoll            Command = 0x60
	TgInitAsTarget        Command = 0x8C
	TgSetGeneralBytes     Command = 0x92
	TgGetData             Command = 0x86
	TgSetData             Command = 0x8E
	TgSetMetaData         Command = 0x94
	TgGetInitiatorCommand Command = 0x88
	TgResponseToInitiator Command = 0x90
	TgGetTargetStatus     Command = 0x8A
)

// Request is a PN532 command and its payload, ready to be framed by
// Driver.Process and friends. Payload length is bounded by N-9 where N is
// the owning Driver's buffer size.
type Request struct {
	Command Command
	Data    []byte
}

// GetFirmwareVersionRequest queries the chip model, firmware version and
// support flags. Expect a 4-byte response.
var GetFirmwareVersionRequest = Request{Command: GetFirmwareVersion}

// InListOneISOATargetRequest starts passive detection of a single ISO14443-A
// target at 106 kbps (the common "find a tag" request).
var InListOneISOATargetRequest = Request{
	Command: InListPassiveTarget,
	Data:    []byte{0x01, 0x00},
}

// SelectTag1Request and SelectTag2Request re-select a previously detected
// target by its logical number, after a deselect.
var (
	SelectTag1Request = Request{Command: InSelect, Data: []byte{0x01}}
	SelectTag2Request = Request{Command: InSelect, Data: []byte{0x02}}
)

// DeselectTag1Request and DeselectTag2Request put a target to sleep without
// releasing it; InSelect can bring it back.
var (
	DeselectTag1Request = Request{Command: InDeselect, Data: []byte{0x01}}
	DeselectTag2Request = Request{Command: InDeselect, Data: []byte{0x02}}
)

// ReleaseTag1Request and ReleaseTag2Request end a target session entirely.
var (
	ReleaseTag1Request = Request{Command: InRelease, Data: []byte{0x01}}
	ReleaseTag2Request = Request{Command: InRelease, Data: []byte{0x02}}
)

// SAMMode selects the Secure Access Module's companion-chip wiring, the
// first payload byte of a SAMConfiguration request.
type SAMMode byte

const (
	// SAMModeNormal uses the PN532 without an SAM.
	SAMModeNormal SAMMode = iota + 1
	// SAMModeVirtualCard lets the PN532 act as an SAM, reachable from the
	// host only, for Timeout*50ms before auto-switching to SAMModeNormal.
	SAMModeVirtualCard
	// SAMModeWiredCard connects the SAM's contacts to the PN532's S2C
	// interface, wired through to the host.
	SAMModeWiredCard
	// SAMModeDualCard exposes both the PN532 and the SAM to an external
	// reader simultaneously.
	SAMModeDualCard
)

// SAMConfigurationRequest builds a SAMConfiguration request. timeout is
// rounded down to 50ms units and only meaningful for SAMModeVirtualCard;
// useIRQPin asks the device to pulse the IRQ pin when a command is ready
// (a prior maintainer of the reference driver noted its observable effect
// was unclear -- see DESIGN.md's Open Question notes).
func SAMConfigurationRequest(mode SAMMode, timeoutMS int, useIRQPin bool) Request {
	irq := byte(0)
	if useIRQPin {
		irq = 1
	}
	return Request{
		Command: SAMConfiguration,
		Data:    []byte{byte(mode), byte(timeoutMS / 50), irq},
	}
}

// TxSpeed selects the bitrate RFRegulationTestRequest transmits at.
type TxSpeed byte

const (
	TxSpeed106kbps TxSpeed = 0b0000_0000
	TxSpeed212kbps TxSpeed = 0b0001_0000
	TxSpeed424kbps TxSpeed = 0b0010_0000
	TxSpeed848kbps TxSpeed = 0b0011_0000
)

// TxFraming selects the modulation RFRegulationTestRequest transmits with.
type TxFraming byte

const (
	TxFramingMifare TxFraming = 0b0000_0000
	TxFramingFeliCa TxFraming = 0b0000_0010
)

// RFRegulationTestRequest puts the device into a continuous-wave RF test
// transmission at the given speed and framing (RFRegulationTest, UM0701-02
// §7.27). It never returns -- only a hardware reset recovers the device.
func RFRegulationTestRequest(speed TxSpeed, framing TxFraming) Request {
	return Request{
		Command: RFRegulationTest,
		Data:    []byte{byte(speed) | byte(framing)},
	}
}

const (
	ntagCmdRead    = 0x30
	ntagCmdWrite   = 0xA2
	ntagCmdPwdAuth = 0x1B
)

// NTAGReadRequest builds an InDataExchange request reading the 16 bytes
// (four pages) starting at page, targeting the first selected tag.
func NTAGReadRequest(page byte) Request {
	return Request{
		Command: InDataExchange,
		Data:    []byte{0x01, ntagCmdRead, page},
	}
}

// NTAGWriteRequest builds an InDataExchange request writing one 4-byte page.
func NTAGWriteRequest(page byte, data [4]byte) Request {
	buf := make([]byte, 0, 7)
	buf = append(buf, 0x01, ntagCmdWrite, page)
	buf = append(buf, data[:]...)
	return Request{Command: InDataExchange, Data: buf}
}

// NTAGPwdAuthRequest builds an InCommunicateThru request authenticating with
// a 4-byte NTAG password (PWD_AUTH, used by NTAG21x's read/write
// protection). Unlike the NTAG read/write helpers, PWD_AUTH goes out over
// InCommunicateThru and carries no leading target-number byte.
func NTAGPwdAuthRequest(pwd [4]byte) Request {
	buf := make([]byte, 0, 5)
	buf = append(buf, ntagCmdPwdAuth)
	buf = append(buf, pwd[:]...)
	return Request{Command: InCommunicateThru, Data: buf}
}
