package service

import (
	"sync"
	"time"

	"thermal_regulator/internal/config"
	"thermal_regulator/internal/models"
	"thermal_regulator/internal/sensor"
)

// Plant defaults, used when the config leaves a rate unset.
const (
	AmbientC        = 22.0
	HeatCPerSec     = 2.0  // heater on, °C per second
	CoolCoefficient = 0.05 // Newton cooling, fraction of (temp - ambient) lost per second
)

// SimulatorService is a first-order thermal plant. It is both the sensor the loop samples and
// the sink the loop drives, so the controller can run without hardware.
type SimulatorService struct {
	mu sync.Mutex

	ambient  float64
	heatRate float64
	coolRate float64

	temp         float64
	heater       bool
	position     int
	last         time.Time
	disconnected bool

	now func() time.Time
}

// NewSimulatorService starts the plant at ambient temperature.
func NewSimulatorService(cfg config.SimConfig, now func() time.Time) *SimulatorService {
	if now == nil {
		now = time.Now
	}
	s := &SimulatorService{
		ambient:  cfg.AmbientC,
		heatRate: cfg.HeatRate,
		coolRate: cfg.CoolRate,
		now:      now,
	}
	if s.heatRate <= 0 {
		s.heatRate = HeatCPerSec
	}
	if s.coolRate <= 0 {
		s.coolRate = CoolCoefficient
	}
	s.temp = s.ambient
	s.last = now()
	return s
}

// RequestConversion advances the plant to the current instant.
func (s *SimulatorService) RequestConversion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(s.now())
	return nil
}

// ReadCelsius reports the plant temperature, or the disconnected sentinel.
func (s *SimulatorService) ReadCelsius() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disconnected {
		return sensor.Disconnected, nil
	}
	return s.temp, nil
}

// Apply integrates up to now under the previous outputs, then latches the new ones.
func (s *SimulatorService) Apply(out models.ActuatorOutputs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(s.now())
	s.heater = out.HeaterEnabled
	s.position = out.Position
	return nil
}

func (s *SimulatorService) Close() error {
	return s.Apply(models.Off)
}

// Temperature returns the true plant temperature.
func (s *SimulatorService) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp
}

// Outputs returns the outputs last applied to the plant.
func (s *SimulatorService) Outputs() models.ActuatorOutputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ActuatorOutputs{HeaterEnabled: s.heater, Position: s.position}
}

// SetDisconnected makes the probe report the disconnected sentinel.
func (s *SimulatorService) SetDisconnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = v
}

func (s *SimulatorService) advance(now time.Time) {
	dt := now.Sub(s.last).Seconds()
	s.last = now
	if dt <= 0 {
		return
	}
	if s.heater {
		s.temp += s.heatRate * dt
	}
	s.temp = coolToward(s.temp, s.ambient, s.coolRate, dt)
}

// coolToward loses heat proportional to the excess over ambient, never undershooting it.
func coolToward(temp, ambient, rate, dt float64) float64 {
	if temp <= ambient {
		return temp
	}
	loss := (temp - ambient) * rate * dt
	if temp-loss < ambient {
		return ambient
	}
	return temp - loss
}
