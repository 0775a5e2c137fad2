package telemetry

import (
	"errors"

	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/models"
)

// Remote receives notifications on the remote cadence. Connected gates delivery: the scheduler
// skips Notify entirely while nobody is listening.
type Remote interface {
	Connected() bool
	Notify(s models.ControllerSnapshot) error
}

// Fanout delivers to every connected member.
type Fanout []Remote

func (f Fanout) Connected() bool {
	for _, r := range f {
		if r != nil && r.Connected() {
			return true
		}
	}
	return false
}

func (f Fanout) Notify(s models.ControllerSnapshot) error {
	var errs []error
	for _, r := range f {
		if r == nil || !r.Connected() {
			continue
		}
		if err := r.Notify(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Console writes the local status line through the logger.
type Console struct {
	log *logger.Logger
}

func NewConsole(log *logger.Logger) *Console {
	return &Console{log: log}
}

// Status emits one status line.
func (c *Console) Status(s models.ControllerSnapshot) {
	c.log.Infow(StatusLine(s),
		"mode", s.Mode.String(),
		"sensor_ok", s.SensorOK,
	)
}
