package control

import (
	"math"
	"time"

	"thermal_regulator/internal/models"
)

const (
	// Tolerance is the half-width of the "at target" band (°C).
	Tolerance = 4.0
	// StabilizeDwell is how long Stabilizing must hold at target before TargetReached.
	StabilizeDwell = 5000 * time.Millisecond
	// OverheatRecoveryMargin is how far below MaxTemp the reading must fall to leave Overheat.
	OverheatRecoveryMargin = 5.0
)

// Inputs is everything one transition evaluation looks at.
type Inputs struct {
	Reading float64
	Target  models.SetpointCommand
	Mode    models.ControlMode // mode at the start of the tick
	Dwell   time.Duration      // time spent in Mode
}

// AtTarget reports whether reading lies inside the tolerance band around target.
func AtTarget(reading float64, target models.SetpointCommand) bool {
	return math.Abs(reading-float64(target)) <= Tolerance
}

// BelowBand reports whether reading is under the lower edge of the band.
func BelowBand(reading float64, target models.SetpointCommand) bool {
	return reading < float64(target)-Tolerance
}

// AboveBand reports the drift-out condition.
func AboveBand(reading float64, target models.SetpointCommand) bool {
	return reading > float64(target)+Tolerance
}

// NextMode evaluates one control tick and returns the mode the controller must be in afterwards.
//
// The drift-out override runs before the per-mode table, and the table is still indexed by
// in.Mode (the mode the tick started in). A table row that does not fire leaves the override in
// place.
func NextMode(in Inputs) models.ControlMode {
	if in.Reading >= models.MaxTemp {
		return models.ModeOverheat
	}
	if !in.Target.Active() {
		return models.ModeIdle
	}

	next := in.Mode
	if AboveBand(in.Reading, in.Target) {
		next = models.ModeIdle
	}
	if mode, ok := tableTransition(in); ok {
		next = mode
	}
	return next
}

// tableTransition is the per-mode transition table. ok is false when the row keeps the current mode.
func tableTransition(in Inputs) (models.ControlMode, bool) {
	atTarget := AtTarget(in.Reading, in.Target)
	below := BelowBand(in.Reading, in.Target)

	switch in.Mode {
	case models.ModeIdle:
		if below {
			return models.ModeHeating, true
		}
		if atTarget {
			return models.ModeTargetReached, true
		}
	case models.ModeHeating:
		if atTarget {
			return models.ModeStabilizing, true
		}
	case models.ModeStabilizing:
		if in.Dwell >= StabilizeDwell && atTarget {
			return models.ModeTargetReached, true
		}
		if below {
			return models.ModeHeating, true
		}
	case models.ModeTargetReached:
		if below {
			return models.ModeHeating, true
		}
	case models.ModeOverheat:
		if in.Reading < models.MaxTemp-OverheatRecoveryMargin {
			switch {
			case atTarget:
				return models.ModeTargetReached, true
			case below:
				return models.ModeHeating, true
			default:
				return models.ModeIdle, true
			}
		}
	}
	return in.Mode, false
}

// EngageMode is the mode an accepted setpoint switches to immediately, before the next tick.
// ok is false when the reading is above the band; the next tick resolves that case.
func EngageMode(reading float64, target models.SetpointCommand) (models.ControlMode, bool) {
	switch {
	case BelowBand(reading, target):
		return models.ModeHeating, true
	case AtTarget(reading, target):
		return models.ModeStabilizing, true
	default:
		return models.ModeIdle, false
	}
}
