package wire

// Function identifies the device register (function member) a command
// targets. The registry below is fixed by the protocol.
type Function uint8

const (
	// FuncMaxVoltage reads the maximum voltage the device can supply (cV).
	FuncMaxVoltage Function = 0

	// FuncMaxCurrent reads the maximum current the device can supply (mA).
	FuncMaxCurrent Function = 1

	// FuncVoltageSetting reads or writes the voltage setpoint (cV).
	FuncVoltageSetting Function = 10

	// FuncCurrentSetting reads or writes the current setpoint (mA).
	FuncCurrentSetting Function = 11

	// FuncOutputStatus reads or writes the output state (0=off, 1=on).
	FuncOutputStatus Function = 12

	// FuncVoltageAndCurrent writes both setpoints in one command
	// (operand = centivolts, operand2 = milliamperes).
	FuncVoltageAndCurrent Function = 20

	// FuncActualVoltage reads the measured output voltage (cV).
	FuncActualVoltage Function = 30

	// FuncActualCurrent reads the measured output current (mA).
	FuncActualCurrent Function = 31

	// FuncCCCVStatus reads the regulation mode. The device reports
	// 0 = constant voltage, 1 = constant current.
	FuncCCCVStatus Function = 32

	// FuncTemperature reads the device temperature (degrees Celsius).
	FuncTemperature Function = 33
)

// String returns the register name.
func (f Function) String() string {
	switch f {
	case FuncMaxVoltage:
		return "max voltage"
	case FuncMaxCurrent:
		return "max current"
	case FuncVoltageSetting:
		return "voltage setting"
	case FuncCurrentSetting:
		return "current setting"
	case FuncOutputStatus:
		return "output status"
	case FuncVoltageAndCurrent:
		return "voltage+current"
	case FuncActualVoltage:
		return "actual voltage"
	case FuncActualCurrent:
		return "actual current"
	case FuncCCCVStatus:
		return "CC/CV status"
	case FuncTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}
