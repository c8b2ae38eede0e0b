package device

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/transport"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// Device is a session with one supply on the bus. The address is fixed at
// construction; the channel is bound afterwards with Bind.
type Device struct {
	mu      sync.Mutex
	address int
	channel transport.Channel

	// Protocol tracing (optional)
	logger    log.Logger
	sessionID string
}

// New creates a session for the supply at the given bus address.
// The session is unusable until Bind attaches a channel.
func New(address int) (*Device, error) {
	if address < wire.MinAddress || address > wire.MaxAddress {
		return nil, &wire.ValidationError{
			Field: "address",
			Value: address,
			Min:   wire.MinAddress,
			Max:   wire.MaxAddress,
		}
	}

	return &Device{
		address:   address,
		sessionID: uuid.New().String(),
	}, nil
}

// Address returns the bus address this session talks to.
func (d *Device) Address() int {
	return d.address
}

// SessionID returns the identifier correlating this session's trace events.
func (d *Device) SessionID() string {
	return d.sessionID
}

// Bind attaches the channel the session talks over. Binding again
// replaces the previous channel, which supports reconnect flows.
func (d *Device) Bind(ch transport.Channel) {
	d.mu.Lock()
	oldState := "UNBOUND"
	if d.channel != nil {
		oldState = "BOUND"
	}
	d.channel = ch
	logger := d.logger
	sessionID := d.sessionID
	d.mu.Unlock()

	if logger != nil {
		logger.Log(log.Event{
			Timestamp:     time.Now(),
			SessionID:     sessionID,
			Direction:     log.DirectionOut,
			Layer:         log.LayerSession,
			Category:      log.CategoryState,
			DeviceAddress: uint8(d.address),
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntitySession,
				OldState: oldState,
				NewState: "BOUND",
				Reason:   "channel attached",
			},
		})
	}
}

// Bound reports whether a channel is attached.
func (d *Device) Bound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channel != nil
}

// SetLogger configures protocol tracing for this session.
// Pass nil to disable tracing. Tracing never alters session behavior.
func (d *Device) SetLogger(logger log.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// parseBuilt recovers the request fields from a frame produced by a
// wire.Build* helper: the session keeps the wire.Request form so trace
// events can report the request fields. A build error passes through
// unchanged; builder frames themselves are always structurally valid.
func parseBuilt(frame []byte, buildErr error) (wire.Request, error) {
	if buildErr != nil {
		return wire.Request{}, buildErr
	}
	return wire.ParseRequest(frame)
}

// roundTrip performs one request/response exchange. The mutex is held for
// the full exchange so concurrent operations cannot interleave frames.
func (d *Device) roundTrip(req wire.Request) ([]byte, error) {
	frame, err := req.Encode()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.channel == nil {
		return nil, ErrNotConnected
	}

	if _, err := d.channel.Write(frame); err != nil {
		return nil, err
	}

	return d.channel.ReadUntil([]byte(wire.FrameDelimiter))
}

// snapshotLogger returns the logger and session ID under the lock.
func (d *Device) snapshotLogger() (log.Logger, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logger, d.sessionID
}

// logOperation emits one session-layer event per completed operation.
func (d *Device) logOperation(req wire.Request, value *int, acked *bool, roundTrip time.Duration) {
	logger, sessionID := d.snapshotLogger()
	if logger == nil {
		return
	}

	direction := log.DirectionOut
	if req.Direction == wire.Read {
		direction = log.DirectionIn
	}

	logger.Log(log.Event{
		Timestamp:     time.Now(),
		SessionID:     sessionID,
		Direction:     direction,
		Layer:         log.LayerSession,
		Category:      log.CategoryOperation,
		DeviceAddress: uint8(d.address),
		Operation: &log.OperationEvent{
			Function:  req.Function,
			Direction: req.Direction,
			Operand:   req.Operand,
			Operand2:  req.Operand2,
			Value:     value,
			Acked:     acked,
			RoundTrip: roundTrip,
		},
	})
}

// logError emits a session-layer error event.
func (d *Device) logError(layer log.Layer, context string, err error) {
	logger, sessionID := d.snapshotLogger()
	if logger == nil {
		return
	}

	logger.Log(log.Event{
		Timestamp:     time.Now(),
		SessionID:     sessionID,
		Direction:     log.DirectionIn,
		Layer:         log.LayerSession,
		Category:      log.CategoryError,
		DeviceAddress: uint8(d.address),
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	})
}

// write executes a prepared write request and reports acknowledgment.
// A reply that is not the exact acknowledgment frame means "not acked";
// it is not an error.
func (d *Device) write(req wire.Request, buildErr error) (bool, error) {
	if buildErr != nil {
		return false, buildErr
	}

	start := time.Now()
	reply, err := d.roundTrip(req)
	if err != nil {
		d.logError(log.LayerTransport, "write "+req.Function.String(), err)
		return false, err
	}

	acked := wire.IsAck(reply)
	d.logOperation(req, nil, &acked, time.Since(start))
	return acked, nil
}

// read executes a read of the given register and returns the raw wire
// value.
func (d *Device) read(fn wire.Function) (int, error) {
	req, err := parseBuilt(wire.BuildRead(d.address, fn))
	if err != nil {
		return 0, err
	}

	start := time.Now()
	reply, err := d.roundTrip(req)
	if err != nil {
		d.logError(log.LayerTransport, "read "+fn.String(), err)
		return 0, err
	}

	value, err := wire.ParseNumericResponse(reply)
	if err != nil {
		d.logError(log.LayerSession, "read "+fn.String(), err)
		return 0, err
	}

	d.logOperation(req, &value, nil, time.Since(start))
	return value, nil
}
