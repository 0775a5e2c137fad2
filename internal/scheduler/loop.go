// Package scheduler runs the single control goroutine: it polls operator input every iteration
// and fires the control, status and remote triggers on their own cadences.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"thermal_regulator/internal/actuator"
	"thermal_regulator/internal/control"
	"thermal_regulator/internal/keypad"
	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/models"
	"thermal_regulator/internal/sensor"
	"thermal_regulator/internal/telemetry"
)

// maxKeysPerStep bounds how many queued keys one iteration consumes so a flood of remote input
// cannot starve the control trigger.
const maxKeysPerStep = keypad.MaxRun

// Intervals configures the trigger cadences.
type Intervals struct {
	Control time.Duration
	Status  time.Duration
	Remote  time.Duration
	Poll    time.Duration
}

// DefaultIntervals matches the firmware cadence.
var DefaultIntervals = Intervals{
	Control: time.Second,
	Status:  2 * time.Second,
	Remote:  time.Second,
	Poll:    20 * time.Millisecond,
}

// StatusSink receives the local status line cadence.
type StatusSink interface {
	Status(s models.ControllerSnapshot)
}

// Recorder persists snapshots and events. Implementations must not block the loop.
type Recorder interface {
	Record(s models.ControllerSnapshot, events []models.ControllerEvent)
}

// Deps are the collaborators driven by the loop. Keys, Status, Remote and Recorder are optional.
type Deps struct {
	Controller *control.Controller
	Keys       keypad.Source
	Ingest     *sensor.Ingest
	Sink       actuator.Sink
	Status     StatusSink
	Remote     telemetry.Remote
	Recorder   Recorder
	Log        *logger.Logger
	// Now defaults to time.Now. Tests inject a fake clock.
	Now func() time.Time
}

// trigger is a periodic deadline re-armed relative to the instant it fired.
type trigger struct {
	interval time.Duration
	next     time.Time
}

func (t *trigger) due(now time.Time) bool { return !now.Before(t.next) }

func (t *trigger) rearm(now time.Time) { t.next = now.Add(t.interval) }

// Loop owns the controller. Only the goroutine calling Run (or Step) touches it.
type Loop struct {
	d     Deps
	poll  time.Duration
	entry keypad.Entry

	control trigger
	status  trigger
	remote  trigger

	snap atomic.Pointer[models.ControllerSnapshot]
}

// New returns a loop whose triggers are all due at the first Step.
func New(iv Intervals, d Deps) *Loop {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	start := d.Now()
	l := &Loop{
		d:       d,
		poll:    iv.Poll,
		control: trigger{interval: iv.Control, next: start},
		status:  trigger{interval: iv.Status, next: start},
		remote:  trigger{interval: iv.Remote, next: start},
	}
	if l.poll <= 0 {
		l.poll = DefaultIntervals.Poll
	}
	l.publish(start)
	return l
}

// Snapshot returns the most recently published controller snapshot. Safe for concurrent use.
func (l *Loop) Snapshot() models.ControllerSnapshot {
	return *l.snap.Load()
}

// Run drives Step until ctx is cancelled, then forces the outputs off.
func (l *Loop) Run(ctx context.Context) error {
	now := l.d.Now()
	l.record(now, []models.ControllerEvent{{
		OccurredAt:  now.UTC(),
		Type:        models.EventControllerStarted,
		Description: "Controller started",
	}})

	t := time.NewTicker(l.poll)
	defer t.Stop()
	for {
		l.Step(l.d.Now())
		select {
		case <-ctx.Done():
			l.stop(l.d.Now())
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Step performs one loop iteration at now.
func (l *Loop) Step(now time.Time) {
	l.drainKeys(now)

	if l.control.due(now) {
		l.controlTick(now)
		l.control.rearm(now)
	}
	if l.status.due(now) {
		if l.d.Status != nil && !l.entry.Active() {
			l.d.Status.Status(l.snapshot(now))
		}
		l.status.rearm(now)
	}
	if l.remote.due(now) {
		if l.d.Remote != nil && l.d.Remote.Connected() {
			if err := l.d.Remote.Notify(l.snapshot(now)); err != nil {
				l.d.Log.Warnw("remote_notify_failed", "err", err)
			}
		}
		l.remote.rearm(now)
	}
	l.publish(now)
}

func (l *Loop) drainKeys(now time.Time) {
	if l.d.Keys == nil {
		return
	}
	for i := 0; i < maxKeysPerStep; i++ {
		k, ok := l.d.Keys.Poll()
		if !ok {
			return
		}
		l.handleKey(k, now)
	}
}

func (l *Loop) handleKey(k keypad.Key, now time.Time) {
	r := l.entry.Press(k)
	switch r.Kind {
	case keypad.ResultNone:
	case keypad.ResultStarted:
		l.d.Log.Infow("setpoint_entry_started")
	case keypad.ResultDigit:
		l.d.Log.Debugw("setpoint_digit", "digits", r.Digits)
	case keypad.ResultAccepted:
		l.d.Log.Infow("setpoint_accepted", "target_c", int(r.Command))
		l.apply(now, l.d.Controller.Engage(r.Command, now))
	case keypad.ResultRejected:
		l.d.Log.Warnw("setpoint_rejected", "digits", r.Digits, "err", r.Err)
		l.record(now, []models.ControllerEvent{{
			OccurredAt:  now.UTC(),
			Type:        models.EventSetpointRejected,
			Description: "Invalid setpoint: " + r.Err.Error(),
			Metadata:    map[string]any{"digits": r.Digits},
		}})
	case keypad.ResultCancelled:
		l.d.Log.Infow("setpoint_cancelled")
		l.apply(now, l.d.Controller.Cancel(now))
	}
}

func (l *Loop) controlTick(now time.Time) {
	sample := l.d.Ingest.Sample()
	if err := l.d.Ingest.Err(); err != nil {
		l.d.Log.Debugw("sensor_unavailable", "err", err, "held_reading_c", sample.Celsius)
	}
	l.apply(now, l.d.Controller.Tick(sample, now))
}

// apply pushes the controller outputs to the sink and records events.
func (l *Loop) apply(now time.Time, events []models.ControllerEvent) {
	out := l.d.Controller.State().Outputs
	if err := l.d.Sink.Apply(out); err != nil {
		l.d.Log.Errorw("actuator_apply_failed", "err", err,
			"heater", out.HeaterEnabled, "position", out.Position)
	}
	for _, e := range events {
		switch e.Type {
		case models.EventOverheat, models.EventSensorFault:
			l.d.Log.Warnw("controller_event", "type", e.Type, "description", e.Description)
		default:
			l.d.Log.Infow("controller_event", "type", e.Type, "description", e.Description)
		}
	}
	l.record(now, events)
}

func (l *Loop) stop(now time.Time) {
	events := l.d.Controller.Cancel(now)
	if err := l.d.Sink.Apply(models.Off); err != nil {
		l.d.Log.Errorw("actuator_off_failed", "err", err)
	}
	events = append(events, models.ControllerEvent{
		OccurredAt:  now.UTC(),
		Type:        models.EventControllerStopped,
		Description: "Controller stopped; outputs off",
	})
	l.record(now, events)
	l.publish(now)
}

func (l *Loop) record(now time.Time, events []models.ControllerEvent) {
	if l.d.Recorder == nil {
		return
	}
	l.d.Recorder.Record(l.snapshot(now), events)
}

func (l *Loop) snapshot(now time.Time) models.ControllerSnapshot {
	s := l.d.Controller.Snapshot(now)
	s.Entering = l.entry.Active()
	return s
}

func (l *Loop) publish(now time.Time) {
	s := l.snapshot(now)
	l.snap.Store(&s)
}
