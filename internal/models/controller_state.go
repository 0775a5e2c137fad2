package models

import "time"

// MaxTemp is the hard safety ceiling and the upper bound for accepted setpoints (°C).
const MaxTemp = 125

// TemperatureSample is one calibrated reading. Valid is false when the sensor was unreachable.
type TemperatureSample struct {
	Celsius float64
	Valid   bool
}

// SetpointCommand is the active target in whole degrees. NoTarget disables regulation.
type SetpointCommand int

const NoTarget SetpointCommand = 0

// Active reports whether the command requests regulation.
func (c SetpointCommand) Active() bool { return c > 0 }

// ModeState is the active mode together with the instant it was entered.
type ModeState struct {
	Mode      ControlMode
	EnteredAt time.Time
}

// Dwell is the time spent in the current mode as of now.
func (s ModeState) Dwell(now time.Time) time.Duration {
	if s.EnteredAt.IsZero() {
		return 0
	}
	return now.Sub(s.EnteredAt)
}

// ActuatorOutputs are the commanded heater and positional actuator outputs.
type ActuatorOutputs struct {
	HeaterEnabled bool `json:"heater_enabled"`
	Position      int  `json:"position"`
}

// Off is the safe output pair.
var Off = ActuatorOutputs{}

// ControllerSnapshot is a read-only view of the controller for status reporting.
type ControllerSnapshot struct {
	ReadingC  float64         `json:"reading_c"`
	SensorOK  bool            `json:"sensor_ok"`
	TargetC   SetpointCommand `json:"target_c"`
	Outputs   ActuatorOutputs `json:"outputs"`
	Mode      ControlMode     `json:"mode"`
	EnteredAt time.Time       `json:"entered_at"`
	Entering  bool            `json:"entering"` // operator is mid-entry on the keypad
	UpdatedAt time.Time       `json:"updated_at"`
}
