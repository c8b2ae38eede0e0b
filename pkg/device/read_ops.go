package device

import (
	"github.com/dpm-protocol/dpm86-go/pkg/units"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// MaxVoltageCentivolts reads the supply's voltage ceiling in wire units.
func (d *Device) MaxVoltageCentivolts() (units.Centivolts, error) {
	v, err := d.read(wire.FuncMaxVoltage)
	return units.Centivolts(v), err
}

// MaxVoltage reads the supply's voltage ceiling in volts.
func (d *Device) MaxVoltage() (float64, error) {
	cv, err := d.MaxVoltageCentivolts()
	return cv.Volts(), err
}

// MaxCurrentMilliamperes reads the supply's current ceiling in wire units.
func (d *Device) MaxCurrentMilliamperes() (units.Milliamperes, error) {
	v, err := d.read(wire.FuncMaxCurrent)
	return units.Milliamperes(v), err
}

// MaxCurrent reads the supply's current ceiling in amperes.
func (d *Device) MaxCurrent() (float64, error) {
	ma, err := d.MaxCurrentMilliamperes()
	return ma.Amps(), err
}

// VoltageSettingCentivolts reads the voltage setpoint in wire units.
func (d *Device) VoltageSettingCentivolts() (units.Centivolts, error) {
	v, err := d.read(wire.FuncVoltageSetting)
	return units.Centivolts(v), err
}

// VoltageSetting reads the voltage setpoint in volts.
func (d *Device) VoltageSetting() (float64, error) {
	cv, err := d.VoltageSettingCentivolts()
	return cv.Volts(), err
}

// CurrentSettingMilliamperes reads the current limit setpoint in wire
// units.
func (d *Device) CurrentSettingMilliamperes() (units.Milliamperes, error) {
	v, err := d.read(wire.FuncCurrentSetting)
	return units.Milliamperes(v), err
}

// CurrentSetting reads the current limit setpoint in amperes.
func (d *Device) CurrentSetting() (float64, error) {
	ma, err := d.CurrentSettingMilliamperes()
	return ma.Amps(), err
}

// ActualVoltageCentivolts reads the measured output voltage in wire units.
func (d *Device) ActualVoltageCentivolts() (units.Centivolts, error) {
	v, err := d.read(wire.FuncActualVoltage)
	return units.Centivolts(v), err
}

// ActualVoltage reads the measured output voltage in volts.
func (d *Device) ActualVoltage() (float64, error) {
	cv, err := d.ActualVoltageCentivolts()
	return cv.Volts(), err
}

// ActualCurrentMilliamperes reads the measured output current in wire
// units.
func (d *Device) ActualCurrentMilliamperes() (units.Milliamperes, error) {
	v, err := d.read(wire.FuncActualCurrent)
	return units.Milliamperes(v), err
}

// ActualCurrent reads the measured output current in amperes.
func (d *Device) ActualCurrent() (float64, error) {
	ma, err := d.ActualCurrentMilliamperes()
	return ma.Amps(), err
}

// OutputEnabled reads whether the output is on.
func (d *Device) OutputEnabled() (bool, error) {
	v, err := d.read(wire.FuncOutputStatus)
	return v == 1, err
}

// Mode reads the regulation mode. The supply reports 0 for constant
// voltage and 1 for constant current.
func (d *Device) Mode() (RegulationMode, error) {
	v, err := d.read(wire.FuncCCCVStatus)
	return RegulationMode(v), err
}

// InCVMode reports whether the supply is voltage regulated. The wire
// encoding is inverted from what the register name suggests: 0 means CV.
func (d *Device) InCVMode() (bool, error) {
	v, err := d.read(wire.FuncCCCVStatus)
	return v == 0, err
}

// Temperature reads the supply temperature in degrees Celsius.
func (d *Device) Temperature() (int, error) {
	return d.read(wire.FuncTemperature)
}

// ReadFunction reads an arbitrary function member and returns its raw wire
// value. It is the escape hatch for registers that have no typed accessor,
// for example on newer firmware.
func (d *Device) ReadFunction(fn wire.Function) (int, error) {
	return d.read(fn)
}
