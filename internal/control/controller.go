package control

import (
	"fmt"
	"time"

	"thermal_regulator/internal/models"
)

// Controller applies samples, setpoint commands and time to a ControllerState.
// It is not safe for concurrent use; exactly one goroutine drives it.
type Controller struct {
	st      ControllerState
	sampled bool
}

// NewController returns a controller in Idle with no target, entered at now.
func NewController(now time.Time) *Controller {
	return &Controller{st: ControllerState{
		Mode: models.ModeState{Mode: models.ModeIdle, EnteredAt: now},
	}}
}

// State returns a copy of the current state.
func (c *Controller) State() ControllerState { return c.st }

// Tick runs one control cycle: ingest the sample, evaluate the transition, re-derive outputs.
// The returned events describe what changed during the cycle.
func (c *Controller) Tick(sample models.TemperatureSample, now time.Time) []models.ControllerEvent {
	var events []models.ControllerEvent

	switch {
	case sample.Valid:
		if c.sampled && !c.st.SensorOK {
			events = append(events, newEvent(now, models.EventSensorRestored, "Sensor reading restored",
				map[string]any{"reading_c": sample.Celsius}))
		}
		c.st.Reading = sample.Celsius
		c.st.SensorOK = true
	case !c.sampled || c.st.SensorOK:
		c.st.SensorOK = false
		events = append(events, newEvent(now, models.EventSensorFault, "Sensor unavailable; holding last reading",
			map[string]any{"held_reading_c": c.st.Reading}))
	}
	c.sampled = true

	from := c.st.Mode.Mode
	next := NextMode(Inputs{
		Reading: c.st.Reading,
		Target:  c.st.Target,
		Mode:    from,
		Dwell:   c.st.Mode.Dwell(now),
	})
	if c.st.SetMode(next, now) {
		events = append(events, c.modeEvents(from, next, now)...)
	}

	c.st.Outputs = DeriveOutputs(c.st.Mode.Mode, c.st.Target, c.st.Reading, c.st.Outputs)
	return events
}

// Engage makes cmd the active target and re-evaluates immediately instead of waiting for the
// next tick.
func (c *Controller) Engage(cmd models.SetpointCommand, now time.Time) []models.ControllerEvent {
	if !cmd.Active() {
		return c.Cancel(now)
	}

	prev := c.st.Target
	c.st.Target = cmd
	events := []models.ControllerEvent{newEvent(now, models.EventSetpointAccepted,
		fmt.Sprintf("Setpoint set to %dC", cmd),
		map[string]any{"target_c": int(cmd), "previous_c": int(prev)})}

	from := c.st.Mode.Mode
	if from != models.ModeOverheat {
		if mode, ok := EngageMode(c.st.Reading, cmd); ok && c.st.SetMode(mode, now) {
			events = append(events, c.modeEvents(from, mode, now)...)
		}
	}
	c.st.Outputs = DeriveOutputs(c.st.Mode.Mode, c.st.Target, c.st.Reading, c.st.Outputs)
	return events
}

// Cancel clears the target, forces outputs off and returns to Idle.
func (c *Controller) Cancel(now time.Time) []models.ControllerEvent {
	prev := c.st.Target
	c.st.Target = models.NoTarget
	c.st.Outputs = models.Off

	events := []models.ControllerEvent{newEvent(now, models.EventCancel, "Heater off",
		map[string]any{"previous_c": int(prev)})}
	from := c.st.Mode.Mode
	if c.st.SetMode(models.ModeIdle, now) {
		events = append(events, c.modeEvents(from, models.ModeIdle, now)...)
	}
	return events
}

// Snapshot returns the read-only view used by telemetry.
func (c *Controller) Snapshot(now time.Time) models.ControllerSnapshot {
	return models.ControllerSnapshot{
		ReadingC:  c.st.Reading,
		SensorOK:  c.st.SensorOK,
		TargetC:   c.st.Target,
		Outputs:   c.st.Outputs,
		Mode:      c.st.Mode.Mode,
		EnteredAt: c.st.Mode.EnteredAt,
		UpdatedAt: now,
	}
}

func (c *Controller) modeEvents(from, to models.ControlMode, now time.Time) []models.ControllerEvent {
	meta := map[string]any{
		"from":      from.String(),
		"to":        to.String(),
		"reading_c": c.st.Reading,
		"target_c":  int(c.st.Target),
	}
	events := []models.ControllerEvent{newEvent(now, models.EventModeChange, "Mode changed to "+to.String(), meta)}
	switch {
	case to == models.ModeOverheat:
		events = append(events, newEvent(now, models.EventOverheat, "Overheat detected; outputs forced off",
			map[string]any{"reading_c": c.st.Reading, "max_temp_c": models.MaxTemp}))
	case from == models.ModeOverheat:
		events = append(events, newEvent(now, models.EventOverheatCleared, "Overheat cleared",
			map[string]any{"reading_c": c.st.Reading, "resumed": to.String()}))
	}
	return events
}

func newEvent(now time.Time, typ, desc string, meta map[string]any) models.ControllerEvent {
	return models.ControllerEvent{
		OccurredAt:  now.UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}
}
