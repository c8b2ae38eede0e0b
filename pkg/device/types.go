package device

import "errors"

// Session errors.
var (
	// ErrNotConnected is returned when an operation is attempted before
	// a channel is bound.
	ErrNotConnected = errors.New("not connected")
)

// RegulationMode is the supply's output regulation mode.
type RegulationMode uint8

const (
	// ModeConstantVoltage - output is voltage regulated (wire value 0).
	ModeConstantVoltage RegulationMode = 0

	// ModeConstantCurrent - output is current limited (wire value 1).
	ModeConstantCurrent RegulationMode = 1
)

// String returns the mode name.
func (m RegulationMode) String() string {
	switch m {
	case ModeConstantVoltage:
		return "CV"
	case ModeConstantCurrent:
		return "CC"
	default:
		return "UNKNOWN"
	}
}
