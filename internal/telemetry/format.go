// Package telemetry renders controller snapshots for the local status line and remote
// subscribers, and fans them out to MQTT and websocket clients.
package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"thermal_regulator/internal/models"
)

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func localLabel(m models.ControlMode) string {
	if m == models.ModeOverheat {
		return m.Label() + "!"
	}
	return m.Label()
}

// StatusLine renders the local console status line.
func StatusLine(s models.ControllerSnapshot) string {
	if !s.TargetC.Active() {
		return fmt.Sprintf("Temp: %.1fC | Heater: OFF | State: %s", s.ReadingC, localLabel(s.Mode))
	}
	return fmt.Sprintf("Temp: %.1fC | Target: %dC | Heater: %s | Servo: %d° | State: %s",
		s.ReadingC, s.TargetC, onOff(s.Outputs.HeaterEnabled), s.Outputs.Position, localLabel(s.Mode))
}

// Notification renders the compact string pushed to remote subscribers.
func Notification(s models.ControllerSnapshot) string {
	return fmt.Sprintf("Temp:%.1fC,Target:%dC,Heater:%s,Servo:%d,State:%s",
		s.ReadingC, s.TargetC, onOff(s.Outputs.HeaterEnabled), s.Outputs.Position, s.Mode.Label())
}

// Payload is the JSON document published to the broker.
type Payload struct {
	Controller ControllerPayload `json:"controller"`
}

// ControllerPayload contains the snapshot fields in wire form.
type ControllerPayload struct {
	Timestamp    string  `json:"timestamp"`
	ReadingC     float64 `json:"reading_c"`
	SensorOK     bool    `json:"sensor_ok"`
	TargetC      int     `json:"target_c"`
	Heater       string  `json:"heater"`
	Position     int     `json:"position"`
	Mode         string  `json:"mode"`
	Notification string  `json:"notification"`
}

// FormatPayload creates the JSON payload for a snapshot.
func FormatPayload(s models.ControllerSnapshot) ([]byte, error) {
	return json.Marshal(Payload{Controller: ControllerPayload{
		Timestamp:    s.UpdatedAt.UTC().Format(time.RFC3339),
		ReadingC:     roundTenth(s.ReadingC),
		SensorOK:     s.SensorOK,
		TargetC:      int(s.TargetC),
		Heater:       onOff(s.Outputs.HeaterEnabled),
		Position:     s.Outputs.Position,
		Mode:         s.Mode.String(),
		Notification: Notification(s),
	}})
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
