package control

import (
	"time"

	"thermal_regulator/internal/models"
)

// ControllerState is the single owned copy of everything the control loop mutates.
type ControllerState struct {
	Mode     models.ModeState
	Target   models.SetpointCommand
	Reading  float64 // last valid reading
	SensorOK bool    // whether the most recent sample was valid
	Outputs  models.ActuatorOutputs
}

// SetMode switches to mode and stamps the entry time. Re-requesting the current mode is a no-op
// and leaves EnteredAt untouched. It reports whether the mode changed.
func (s *ControllerState) SetMode(mode models.ControlMode, now time.Time) bool {
	if mode == s.Mode.Mode {
		return false
	}
	s.Mode = models.ModeState{Mode: mode, EnteredAt: now}
	return true
}
