package wire

import "github.com/dpm-protocol/dpm86-go/pkg/units"

// Setpoint limits enforced by the device firmware, in wire units.
const (
	// MaxVoltage is the highest accepted voltage setpoint (60.00 V).
	MaxVoltage units.Centivolts = 6000

	// MaxCurrent is the highest accepted current setpoint (24.000 A).
	MaxCurrent units.Milliamperes = 24000
)

// BuildWriteVoltage builds a frame setting the voltage setpoint, given in
// centivolts. Setpoints outside [0, MaxVoltage] fail validation.
func BuildWriteVoltage(address int, cv units.Centivolts) ([]byte, error) {
	if cv < 0 || cv > MaxVoltage {
		return nil, &ValidationError{Field: "voltage", Value: int(cv), Min: 0, Max: int(MaxVoltage)}
	}
	return Request{
		Address:   address,
		Direction: Write,
		Function:  FuncVoltageSetting,
		Operand:   int(cv),
	}.Encode()
}

// BuildWriteVoltageVolts converts a voltage in volts to centivolts
// (truncating) and delegates to BuildWriteVoltage.
func BuildWriteVoltageVolts(address int, volts float64) ([]byte, error) {
	return BuildWriteVoltage(address, units.VoltsToCentivolts(volts))
}

// BuildWriteCurrent builds a frame setting the current setpoint, given in
// milliamperes. Setpoints outside [0, MaxCurrent] fail validation.
func BuildWriteCurrent(address int, ma units.Milliamperes) ([]byte, error) {
	if ma < 0 || ma > MaxCurrent {
		return nil, &ValidationError{Field: "current", Value: int(ma), Min: 0, Max: int(MaxCurrent)}
	}
	return Request{
		Address:   address,
		Direction: Write,
		Function:  FuncCurrentSetting,
		Operand:   int(ma),
	}.Encode()
}

// BuildWriteCurrentAmps converts a current in amperes to milliamperes
// (truncating) and delegates to BuildWriteCurrent.
func BuildWriteCurrentAmps(address int, amps float64) ([]byte, error) {
	return BuildWriteCurrent(address, units.AmpsToMilliamperes(amps))
}

// BuildWriteOutputStatus builds a frame switching the output on or off.
func BuildWriteOutputStatus(address int, enabled bool) ([]byte, error) {
	operand := 0
	if enabled {
		operand = 1
	}
	return Request{
		Address:   address,
		Direction: Write,
		Function:  FuncOutputStatus,
		Operand:   operand,
	}.Encode()
}

// BuildWriteVoltageAndCurrent builds a frame setting both setpoints in a
// single command, given in wire units.
func BuildWriteVoltageAndCurrent(address int, cv units.Centivolts, ma units.Milliamperes) ([]byte, error) {
	if cv < 0 || cv > MaxVoltage {
		return nil, &ValidationError{Field: "voltage", Value: int(cv), Min: 0, Max: int(MaxVoltage)}
	}
	if ma < 0 || ma > MaxCurrent {
		return nil, &ValidationError{Field: "current", Value: int(ma), Min: 0, Max: int(MaxCurrent)}
	}
	operand2 := int(ma)
	return Request{
		Address:   address,
		Direction: Write,
		Function:  FuncVoltageAndCurrent,
		Operand:   int(cv),
		Operand2:  &operand2,
	}.Encode()
}

// BuildWriteVoltageAndCurrentVolts converts both physical units
// (truncating) and delegates to BuildWriteVoltageAndCurrent.
func BuildWriteVoltageAndCurrentVolts(address int, volts, amps float64) ([]byte, error) {
	return BuildWriteVoltageAndCurrent(address, units.VoltsToCentivolts(volts), units.AmpsToMilliamperes(amps))
}

// BuildRead builds a read frame for any function member. Reads carry the
// placeholder operand 0.
func BuildRead(address int, fn Function) ([]byte, error) {
	return Request{
		Address:   address,
		Direction: Read,
		Function:  fn,
		Operand:   0,
	}.Encode()
}

// Per-register read builders composing BuildRead with the registry.

func BuildReadMaxVoltage(address int) ([]byte, error) { return BuildRead(address, FuncMaxVoltage) }

func BuildReadMaxCurrent(address int) ([]byte, error) { return BuildRead(address, FuncMaxCurrent) }

func BuildReadVoltageSetting(address int) ([]byte, error) {
	return BuildRead(address, FuncVoltageSetting)
}

func BuildReadCurrentSetting(address int) ([]byte, error) {
	return BuildRead(address, FuncCurrentSetting)
}

func BuildReadOutputStatus(address int) ([]byte, error) { return BuildRead(address, FuncOutputStatus) }

func BuildReadActualVoltage(address int) ([]byte, error) {
	return BuildRead(address, FuncActualVoltage)
}

func BuildReadActualCurrent(address int) ([]byte, error) {
	return BuildRead(address, FuncActualCurrent)
}

func BuildReadCCCVStatus(address int) ([]byte, error) { return BuildRead(address, FuncCCCVStatus) }

func BuildReadTemperature(address int) ([]byte, error) { return BuildRead(address, FuncTemperature) }
