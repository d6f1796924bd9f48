package pn532

// StatusError is the PN532's own failure taxonomy, carried in the low six
// bits of the first payload byte that many commands return. It is a
// secondary utility, not part of the transaction proper: the transaction
// engine never inspects payload contents, so decoding a StatusError from a
// response is left to the caller.
type StatusError byte

const (
	StatusTimeout                           StatusError = 0x01
	StatusCrcError                          StatusError = 0x02
	StatusParityError                       StatusError = 0x03
	StatusWrongBitCountDuringAntiCollision  StatusError = 0x04
	StatusFramingError                      StatusError = 0x05
	StatusAbnormalBitCollision              StatusError = 0x06
	StatusInsufficientCommunicationBuffer   StatusError = 0x07
	StatusRfBufferOverflow                  StatusError = 0x09
	StatusRfFieldHasNotBeenSwitchedOn       StatusError = 0x0A
	StatusRfProtocolError                   StatusError = 0x0B
	StatusOverheating                       StatusError = 0x0D
	StatusInternalBufferOverflow            StatusError = 0x0E
	StatusInvalidParameter                  StatusError = 0x10
	StatusCommandNotSupported               StatusError = 0x12
	StatusWrongDataFormat                   StatusError = 0x13
	StatusAuthenticationError               StatusError = 0x14
	StatusWrongUidCheckByte                 StatusError = 0x23
	StatusInvalidDeviceState                StatusError = 0x25
	StatusOperationNotAllowed               StatusError = 0x26
	StatusCommandNotAcceptable               StatusError = 0x27
	StatusTargetHasBeenReleased             StatusError = 0x29
	StatusCardHasBeenExchanged              StatusError = 0x2A
	StatusCardHasDisappeared                StatusError = 0x2B
	StatusNfcId3InitiatorTargetMismatch     StatusError = 0x2C
	StatusOverCurrent                       StatusError = 0x2D
	StatusNadMissing                        StatusError = 0x2E
)

var statusMessages = map[StatusError]string{
	StatusTimeout:                          "timeout",
	StatusCrcError:                         "CRC error",
	StatusParityError:                      "parity error",
	StatusWrongBitCountDuringAntiCollision: "wrong bit count during anti-collision",
	StatusFramingError:                     "framing error",
	StatusAbnormalBitCollision:             "abnormal bit collision",
	StatusInsufficientCommunicationBuffer:  "insufficient communication buffer",
	StatusRfBufferOverflow:                 "RF buffer overflow",
	StatusRfFieldHasNotBeenSwitchedOn:      "RF field has not been switched on",
	StatusRfProtocolError:                  "RF protocol error",
	StatusOverheating:                      "overheating",
	StatusInternalBufferOverflow:           "internal buffer overflow",
	StatusInvalidParameter:                 "invalid parameter",
	StatusCommandNotSupported:              "command not supported",
	StatusWrongDataFormat:                  "wrong data format",
	StatusAuthenticationError:              "authentication error",
	StatusWrongUidCheckByte:                "wrong UID check byte",
	StatusInvalidDeviceState:               "invalid device state",
	StatusOperationNotAllowed:              "operation not allowed",
	StatusCommandNotAcceptable:             "command not acceptable",
	StatusTargetHasBeenReleased:            "target has been released",
	StatusCardHasBeenExchanged:             "card has been exchanged",
	StatusCardHasDisappeared:               "card has disappeared",
	StatusNfcId3InitiatorTargetMismatch:    "NFCID3 initiator/target mismatch",
	StatusOverCurrent:                      "over current",
	StatusNadMissing:                       "NAD missing",
}

func (e StatusError) Error() string {
	if msg, ok := statusMessages[e]; ok {
		return "pn532: " + msg
	}
	return "pn532: unknown device status"
}

// DecodeStatus interprets the low six bits of b as a device status code. It
// returns nil when those bits are zero (success) and a generic error for
// any code not in the known table.
func DecodeStatus(b byte) error {
	code := StatusError(b & 0x3F)
	if code == 0 {
		return nil
	}
	return code
}
