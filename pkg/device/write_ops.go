package device

import (
	"github.com/dpm-protocol/dpm86-go/pkg/units"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// SetVoltageCentivolts sets the voltage setpoint in wire units.
func (d *Device) SetVoltageCentivolts(cv units.Centivolts) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteVoltage(d.address, cv))
	return d.write(req, err)
}

// SetVoltage sets the voltage setpoint in volts. The value is converted
// to centivolts with truncation.
func (d *Device) SetVoltage(volts float64) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteVoltageVolts(d.address, volts))
	return d.write(req, err)
}

// SetCurrentMilliamperes sets the current limit in wire units.
func (d *Device) SetCurrentMilliamperes(ma units.Milliamperes) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteCurrent(d.address, ma))
	return d.write(req, err)
}

// SetCurrent sets the current limit in amperes. The value is converted to
// milliamperes with truncation.
func (d *Device) SetCurrent(amps float64) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteCurrentAmps(d.address, amps))
	return d.write(req, err)
}

// SetVoltageAndCurrentWire sets both setpoints in one command, wire units.
func (d *Device) SetVoltageAndCurrentWire(cv units.Centivolts, ma units.Milliamperes) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteVoltageAndCurrent(d.address, cv, ma))
	return d.write(req, err)
}

// SetVoltageAndCurrent sets both setpoints in one command, physical units.
func (d *Device) SetVoltageAndCurrent(volts, amps float64) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteVoltageAndCurrentVolts(d.address, volts, amps))
	return d.write(req, err)
}

// SetOutput switches the output on or off.
func (d *Device) SetOutput(enabled bool) (bool, error) {
	req, err := parseBuilt(wire.BuildWriteOutputStatus(d.address, enabled))
	return d.write(req, err)
}
