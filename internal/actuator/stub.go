//go:build !linux

package actuator

import (
	"errors"

	"thermal_regulator/internal/models"
)

// GPIOSink is not available on non-Linux platforms.
type GPIOSink struct{}

// NewGPIOSink returns an error on non-Linux platforms.
func NewGPIOSink(chip string, heaterLine int, pwmChip string, pwmChannel int) (*GPIOSink, error) {
	return nil, errors.New("actuator: gpio not supported on this platform (requires Linux)")
}

func (s *GPIOSink) Apply(out models.ActuatorOutputs) error {
	return errors.New("actuator: gpio not supported")
}

func (s *GPIOSink) Close() error { return nil }
