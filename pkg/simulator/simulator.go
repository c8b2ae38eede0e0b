// Package simulator implements the device side of the DPM86xx line
// protocol: a virtual supply that answers requests the way the hardware
// does. It backs protocol tests and the dpm-sim command.
package simulator

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/transport"
	"github.com/dpm-protocol/dpm86-go/pkg/units"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// Config configures a simulated supply.
type Config struct {
	// Address is the bus address the simulator answers to.
	Address int

	// MaxVoltage is the voltage ceiling in centivolts (default 6000).
	MaxVoltage units.Centivolts

	// MaxCurrent is the current ceiling in milliamperes (default 24000).
	MaxCurrent units.Milliamperes

	// Temperature is the reported temperature in degrees Celsius
	// (default 24).
	Temperature int
}

// State is a snapshot of the simulated supply.
type State struct {
	Voltage     units.Centivolts
	Current     units.Milliamperes
	Output      bool
	ConstantCur bool
	Temperature int
}

// Simulator is a virtual DPM86xx supply. It applies writes to its state,
// acknowledges any well-formed write addressed to it, and answers reads
// from the current state. Frames it cannot parse, and frames addressed to
// other devices, are ignored without a reply, matching how a real supply
// shares a multi-drop bus.
type Simulator struct {
	mu sync.Mutex

	address     int
	maxVoltage  units.Centivolts
	maxCurrent  units.Milliamperes
	voltage     units.Centivolts
	current     units.Milliamperes
	output      bool
	constantCur bool
	temperature int
	logger      log.Logger
}

// New creates a simulator from the config, applying defaults for zero
// fields. The address must be a valid bus address.
func New(config Config) (*Simulator, error) {
	if config.Address < wire.MinAddress || config.Address > wire.MaxAddress {
		return nil, &wire.ValidationError{
			Field: "address",
			Value: config.Address,
			Min:   wire.MinAddress,
			Max:   wire.MaxAddress,
		}
	}
	if config.MaxVoltage == 0 {
		config.MaxVoltage = wire.MaxVoltage
	}
	if config.MaxCurrent == 0 {
		config.MaxCurrent = wire.MaxCurrent
	}
	if config.Temperature == 0 {
		config.Temperature = 24
	}

	return &Simulator{
		address:     config.Address,
		maxVoltage:  config.MaxVoltage,
		maxCurrent:  config.MaxCurrent,
		temperature: config.Temperature,
	}, nil
}

// Address returns the simulator's bus address.
func (s *Simulator) Address() int {
	return s.address
}

// Snapshot returns a copy of the current state.
func (s *Simulator) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Voltage:     s.voltage,
		Current:     s.current,
		Output:      s.output,
		ConstantCur: s.constantCur,
		Temperature: s.temperature,
	}
}

// SetTemperature changes the reported temperature.
func (s *Simulator) SetTemperature(celsius int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature = celsius
}

// SetConstantCurrent switches the reported regulation mode.
func (s *Simulator) SetConstantCurrent(cc bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constantCur = cc
}

// SetLogger enables frame tracing for connections handled by Serve. Each
// connection is traced under a fresh session ID. Pass nil to disable.
func (s *Simulator) SetLogger(logger log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// HandleFrame processes one raw frame and returns the reply frame, or nil
// when the supply stays silent.
func (s *Simulator) HandleFrame(frame []byte) []byte {
	req, err := wire.ParseRequest(frame)
	if err != nil {
		// Noise or another protocol on the line: no reply.
		return nil
	}
	if req.Address != s.address {
		// Another device's frame on the shared bus.
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Direction {
	case wire.Write:
		s.applyWrite(req)
		// The ack confirms receipt, not execution, and always carries
		// address 01 whatever the device's own address is.
		return []byte(wire.AckFrame)
	case wire.Read:
		return s.replyFrame(req.Function, s.readRegister(req.Function))
	default:
		return nil
	}
}

// applyWrite mutates state for the registers the supply accepts. Unknown
// registers are ignored but still acknowledged by the caller.
func (s *Simulator) applyWrite(req wire.Request) {
	switch req.Function {
	case wire.FuncVoltageSetting:
		s.voltage = clampVoltage(units.Centivolts(req.Operand), s.maxVoltage)
	case wire.FuncCurrentSetting:
		s.current = clampCurrent(units.Milliamperes(req.Operand), s.maxCurrent)
	case wire.FuncOutputStatus:
		s.output = req.Operand != 0
	case wire.FuncVoltageAndCurrent:
		s.voltage = clampVoltage(units.Centivolts(req.Operand), s.maxVoltage)
		if req.Operand2 != nil {
			s.current = clampCurrent(units.Milliamperes(*req.Operand2), s.maxCurrent)
		}
	}
}

// readRegister returns the wire value for a register. Unknown registers
// read as 0.
func (s *Simulator) readRegister(fn wire.Function) int {
	switch fn {
	case wire.FuncMaxVoltage:
		return int(s.maxVoltage)
	case wire.FuncMaxCurrent:
		return int(s.maxCurrent)
	case wire.FuncVoltageSetting:
		return int(s.voltage)
	case wire.FuncCurrentSetting:
		return int(s.current)
	case wire.FuncOutputStatus:
		if s.output {
			return 1
		}
		return 0
	case wire.FuncActualVoltage:
		if s.output {
			return int(s.voltage)
		}
		return 0
	case wire.FuncActualCurrent:
		if s.output {
			return int(s.current)
		}
		return 0
	case wire.FuncCCCVStatus:
		if s.constantCur {
			return 1
		}
		return 0
	case wire.FuncTemperature:
		return s.temperature
	default:
		return 0
	}
}

// replyFrame builds a read reply, which has the same shape as a read
// request with the value in the operand position.
func (s *Simulator) replyFrame(fn wire.Function, value int) []byte {
	reply := wire.Request{
		Address:   s.address,
		Direction: wire.Read,
		Function:  fn,
		Operand:   value,
	}
	frame, err := reply.Encode()
	if err != nil {
		// A register value outside the operand range cannot be framed;
		// the supply stays silent.
		return nil
	}
	return frame
}

// Serve answers frames from rw until the reader fails. A clean EOF
// returns nil; any other error is returned to the caller.
func (s *Simulator) Serve(rw io.ReadWriter) error {
	ch := transport.NewLineChannel(rw)

	s.mu.Lock()
	logger := s.logger
	s.mu.Unlock()
	if logger != nil {
		ch.SetLogger(logger, uuid.New().String())
	}

	for {
		frame, err := ch.ReadUntil([]byte(wire.FrameDelimiter))
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		reply := s.HandleFrame(frame)
		if reply == nil {
			continue
		}
		if _, err := ch.Write(reply); err != nil {
			return err
		}
	}
}

func clampVoltage(v, limit units.Centivolts) units.Centivolts {
	if v > limit {
		return limit
	}
	return v
}

func clampCurrent(c, limit units.Milliamperes) units.Milliamperes {
	if c > limit {
		return limit
	}
	return c
}
