// Package units defines the wire-unit integer types the DPM86xx protocol
// transmits and their conversions to physical float values.
//
// The device exchanges voltage as centivolts (volts x 100) and current as
// milliamperes (amperes x 1000). Conversions from float physical units
// truncate toward zero, matching the device's integer arithmetic; the
// reverse conversions are exact.
package units

import "strconv"

// Centivolts is a voltage in 1/100 V, the protocol's wire unit for voltage.
type Centivolts int

// Milliamperes is a current in 1/1000 A, the protocol's wire unit for
// current.
type Milliamperes int

// VoltsToCentivolts converts a voltage in volts to centivolts.
// Fractional centivolts are truncated.
func VoltsToCentivolts(v float64) Centivolts {
	return Centivolts(v * 100)
}

// AmpsToMilliamperes converts a current in amperes to milliamperes.
// Fractional milliamperes are truncated.
func AmpsToMilliamperes(a float64) Milliamperes {
	return Milliamperes(a * 1000)
}

// Volts returns the voltage in volts.
func (cv Centivolts) Volts() float64 {
	return float64(cv) / 100.0
}

// Amps returns the current in amperes.
func (ma Milliamperes) Amps() float64 {
	return float64(ma) / 1000.0
}

// String formats the voltage in volts, e.g. "12.34 V".
func (cv Centivolts) String() string {
	return strconv.FormatFloat(cv.Volts(), 'f', 2, 64) + " V"
}

// String formats the current in amperes, e.g. "1.500 A".
func (ma Milliamperes) String() string {
	return strconv.FormatFloat(ma.Amps(), 'f', 3, 64) + " A"
}
