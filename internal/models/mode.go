package models

import "fmt"

// ControlMode is the named operating state of the controller.
type ControlMode uint8

const (
	ModeIdle ControlMode = iota
	ModeHeating
	ModeStabilizing
	ModeTargetReached
	ModeOverheat
)

// Modes lists every ControlMode in declaration order.
var Modes = []ControlMode{ModeIdle, ModeHeating, ModeStabilizing, ModeTargetReached, ModeOverheat}

// String returns the machine-readable mode name used in JSON and the event log.
func (m ControlMode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeHeating:
		return "HEATING"
	case ModeStabilizing:
		return "STABILIZING"
	case ModeTargetReached:
		return "TARGET_REACHED"
	case ModeOverheat:
		return "OVERHEAT"
	default:
		return "UNKNOWN"
	}
}

// Label returns the operator-facing name shown on status lines.
func (m ControlMode) Label() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeHeating:
		return "HEATING"
	case ModeStabilizing:
		return "STABILIZING"
	case ModeTargetReached:
		return "TARGET REACHED"
	case ModeOverheat:
		return "OVERHEAT"
	default:
		return "UNKNOWN"
	}
}

func (m ControlMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ControlMode) UnmarshalText(text []byte) error {
	parsed, err := ParseControlMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseControlMode maps a name produced by String back to its ControlMode.
func ParseControlMode(s string) (ControlMode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeIdle, fmt.Errorf("unknown control mode %q", s)
}
