package control

import "thermal_regulator/internal/models"

// ReachedLowBand is how far below target the heater re-engages while in TargetReached (°C).
const ReachedLowBand = 0.5

// DeriveOutputs computes the actuator outputs demanded by mode. prev is only consulted inside
// the TargetReached hysteresis band, where the heater keeps its previous state.
func DeriveOutputs(mode models.ControlMode, target models.SetpointCommand, reading float64, prev models.ActuatorOutputs) models.ActuatorOutputs {
	if mode == models.ModeOverheat || !target.Active() {
		return models.Off
	}

	t := float64(target)
	switch mode {
	case models.ModeHeating:
		return models.ActuatorOutputs{HeaterEnabled: true, Position: int(target)}
	case models.ModeStabilizing:
		if reading < t {
			return models.ActuatorOutputs{HeaterEnabled: true, Position: int(target)}
		}
		return models.Off
	case models.ModeTargetReached:
		heater := prev.HeaterEnabled
		if reading < t-ReachedLowBand {
			heater = true
		} else if reading >= t {
			heater = false
		}
		return models.ActuatorOutputs{HeaterEnabled: heater, Position: int(target)}
	case models.ModeIdle:
		return models.Off
	default:
		return models.Off
	}
}
