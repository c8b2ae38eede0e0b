package log

import (
	"time"

	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// Direction indicates whether data flows toward the device or away from it.
type Direction uint8

const (
	// DirectionIn is data received from the device.
	DirectionIn Direction = 0
	// DirectionOut is data sent to the device.
	DirectionOut Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer identifies which layer of the stack produced an event.
type Layer uint8

const (
	// LayerTransport is the byte transport (serial line or TCP bridge).
	LayerTransport Layer = 0
	// LayerSession is the device session executing logical operations.
	LayerSession Layer = 1
)

func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the kind of event.
type Category uint8

const (
	// CategoryFrame is a raw frame crossing the transport.
	CategoryFrame Category = 0
	// CategoryOperation is a logical register read or write.
	CategoryOperation Category = 1
	// CategoryState is a state transition (session bound, link closed).
	CategoryState Category = 2
	// CategoryError is an error condition.
	CategoryError Category = 3
)

func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryOperation:
		return "OPERATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is a single trace log entry. Events are encoded as CBOR maps with
// integer keys to keep trace files compact.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session this event belongs to.
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer identifies the protocol layer.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// DeviceAddress is the bus address of the device, when known.
	DeviceAddress uint8 `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the remote endpoint for bridged transports.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Frame holds raw frame data for transport events.
	Frame *FrameEvent `cbor:"8,keyasint,omitempty"`

	// Operation holds details of a logical read or write.
	Operation *OperationEvent `cbor:"9,keyasint,omitempty"`

	// StateChange holds details of a state transition.
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"`

	// Error holds details of an error event.
	Error *ErrorEventData `cbor:"11,keyasint,omitempty"`
}

// MaxFrameDataSize limits how many frame bytes are stored per event.
// Well-formed frames are at most a few dozen bytes, so this only guards
// against runaway input on a noisy line.
const MaxFrameDataSize = 256

// FrameEvent captures a raw frame crossing the transport.
type FrameEvent struct {
	// Size is the original frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the frame content, possibly truncated.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data was cut at MaxFrameDataSize.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// OperationEvent captures one logical register operation as seen by the
// session layer. Write operations record whether the device acknowledged;
// read operations record the returned value.
type OperationEvent struct {
	// Function is the function member the operation targeted.
	Function wire.Function `cbor:"1,keyasint"`

	// Direction is the register access direction (read or write).
	Direction wire.Direction `cbor:"2,keyasint"`

	// Operand is the value sent with the request.
	Operand int `cbor:"3,keyasint"`

	// Operand2 is the second operand of combined writes.
	Operand2 *int `cbor:"4,keyasint,omitempty"`

	// Value is the integer a read returned.
	Value *int `cbor:"5,keyasint,omitempty"`

	// Acked reports whether a write was acknowledged.
	Acked *bool `cbor:"6,keyasint,omitempty"`

	// RoundTrip is the time from sending the request to receiving the
	// reply.
	RoundTrip time.Duration `cbor:"7,keyasint,omitempty"`
}

// StateEntity identifies what kind of entity changed state.
type StateEntity uint8

const (
	// StateEntityLink is the underlying byte link.
	StateEntityLink StateEntity = 0
	// StateEntitySession is a device session.
	StateEntitySession StateEntity = 1
)

func (s StateEntity) String() string {
	switch s {
	case StateEntityLink:
		return "LINK"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a state transition.
type StateChangeEvent struct {
	// Entity is what changed state.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state name.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"3,keyasint"`

	// Reason describes why the transition happened.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error condition.
type ErrorEventData struct {
	// Layer is where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context provides additional context (operation, frame fragment).
	Context string `cbor:"3,keyasint,omitempty"`
}
