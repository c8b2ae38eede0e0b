package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Direction selects between reading and writing a device register.
type Direction byte

const (
	// Read requests the current value of a function member.
	Read Direction = 'r'

	// Write sets the value of a function member.
	Write Direction = 'w'
)

// String returns "read", "write", or "invalid".
func (d Direction) String() string {
	switch d {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "invalid"
	}
}

// Field ranges fixed by the protocol.
const (
	MinAddress = 1
	MaxAddress = 99

	MinFunction = 0
	MaxFunction = 99

	MinOperand = 0
	// MaxOperand is 65536, one past the 16-bit maximum. The device
	// firmware validates against 65536, so the codec does too.
	MaxOperand = 65536
)

// FrameDelimiter terminates every request and reply line.
const FrameDelimiter = "\r\n"

// MinRequestLength is the shortest well-formed request line:
// ":01r00=0,\r\n".
const MinRequestLength = 11

// Request is one protocol command addressed to a device on the bus.
// Operand2 is present only for the combined voltage+current write.
type Request struct {
	Address   int
	Direction Direction
	Function  Function
	Operand   int
	Operand2  *int
}

// Validate checks the fields against the protocol ranges in the fixed
// order address, function member, operand, operand2, direction. The first
// violation wins.
func (r Request) Validate() error {
	if r.Address < MinAddress || r.Address > MaxAddress {
		return &ValidationError{Field: "address", Value: r.Address, Min: MinAddress, Max: MaxAddress}
	}
	if int(r.Function) > MaxFunction {
		return &ValidationError{Field: "function member", Value: int(r.Function), Min: MinFunction, Max: MaxFunction}
	}
	if r.Operand < MinOperand || r.Operand > MaxOperand {
		return &ValidationError{Field: "operand", Value: r.Operand, Min: MinOperand, Max: MaxOperand}
	}
	if r.Operand2 != nil && (*r.Operand2 < MinOperand || *r.Operand2 > MaxOperand) {
		return &ValidationError{Field: "operand2", Value: *r.Operand2, Min: MinOperand, Max: MaxOperand}
	}
	if r.Direction != Read && r.Direction != Write {
		return &ValidationError{Field: "direction", Value: int(r.Direction)}
	}
	return nil
}

// Encode validates the request and serializes it to a wire frame.
func (r Request) Encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	frame := fmt.Appendf(nil, ":%02d%c%02d=%d", r.Address, byte(r.Direction), r.Function, r.Operand)
	if r.Operand2 != nil {
		frame = fmt.Appendf(frame, ",%d", *r.Operand2)
	}
	return append(frame, ",\r\n"...), nil
}

// ParseRequest decodes a request line back into its fields. It checks
// structure only, not protocol ranges: a device accepts whatever fits the
// line format, and responder implementations mirror that. Run Validate on
// the result to apply the range rules.
func ParseRequest(frame []byte) (Request, error) {
	if len(frame) < MinRequestLength {
		return Request{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrFrameTooShort, len(frame), MinRequestLength)
	}
	if frame[0] != ':' || frame[6] != '=' {
		return Request{}, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
	if !bytes.HasSuffix(frame, []byte(","+FrameDelimiter)) {
		return Request{}, fmt.Errorf("%w: missing terminator in %q", ErrMalformedFrame, frame)
	}

	address, err := strconv.Atoi(string(frame[1:3]))
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad address in %q", ErrMalformedFrame, frame)
	}
	dir := Direction(frame[3])
	if dir != Read && dir != Write {
		return Request{}, fmt.Errorf("%w: bad direction in %q", ErrMalformedFrame, frame)
	}
	function, err := strconv.Atoi(string(frame[4:6]))
	if err != nil || function < 0 {
		return Request{}, fmt.Errorf("%w: bad function member in %q", ErrMalformedFrame, frame)
	}

	payload := string(frame[7 : len(frame)-3])
	first, second, hasSecond := strings.Cut(payload, ",")
	operand, err := strconv.Atoi(first)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %q", ErrMalformedNumber, first)
	}

	req := Request{
		Address:   address,
		Direction: dir,
		Function:  Function(function),
		Operand:   operand,
	}
	if hasSecond {
		operand2, err := strconv.Atoi(second)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %q", ErrMalformedNumber, second)
		}
		req.Operand2 = &operand2
	}
	return req, nil
}
