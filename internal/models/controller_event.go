package models

import "time"

// Event types written to the controller event log.
const (
	EventModeChange        = "MODE_CHANGE"
	EventSetpointAccepted  = "SETPOINT_ACCEPTED"
	EventSetpointRejected  = "SETPOINT_REJECTED"
	EventCancel            = "CANCEL"
	EventOverheat          = "OVERHEAT"
	EventOverheatCleared   = "OVERHEAT_CLEARED"
	EventSensorFault       = "SENSOR_FAULT"
	EventSensorRestored    = "SENSOR_RESTORED"
	EventControllerStarted = "START"
	EventControllerStopped = "STOP"
)

// ControllerEvent is a single log entry.
type ControllerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
