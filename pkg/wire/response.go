package wire

import (
	"fmt"
	"strconv"
)

// AckFrame is the fixed acknowledgment a device sends after receiving a
// well-formed write. The address echo is always "01" regardless of the
// target address. An acknowledgment confirms the device received the
// command, never that it executed it.
const AckFrame = ":01ok\r\n"

// MinResponseLength is the shortest valid read reply: two-digit address,
// direction, two-digit function member, '=', one digit, ',', CRLF.
const MinResponseLength = 11

// valueOffset is where the numeric payload of a read reply starts.
const valueOffset = 7

// IsAck reports whether frame is exactly the acknowledgment literal. Any
// other byte sequence, including a different address echo, a truncated
// read, or error text, is "not acknowledged" rather than an error.
func IsAck(frame []byte) bool {
	return string(frame) == AckFrame
}

// ParseNumericResponse extracts the integer payload from a read reply of
// the form :AAdMM=VALUE,\r\n. The payload occupies a fixed window, byte 7
// through the trailing ",\r\n"; bytes outside it are not inspected.
func ParseNumericResponse(frame []byte) (int, error) {
	if len(frame) < MinResponseLength {
		return 0, fmt.Errorf("%w: %d bytes, need at least %d", ErrFrameTooShort, len(frame), MinResponseLength)
	}
	payload := frame[valueOffset : len(frame)-3]
	value, err := strconv.Atoi(string(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, payload)
	}
	return value, nil
}
