//go:build linux

package actuator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/warthog618/go-gpiocdev"

	"thermal_regulator/internal/models"
)

// GPIOSink drives the heater relay through a GPIO line and the positional actuator through a
// sysfs PWM channel.
type GPIOSink struct {
	heater  *gpiocdev.Line
	pwmDir  string // e.g. /sys/class/pwm/pwmchip0/pwm0; empty disables the servo
	last    models.ActuatorOutputs
	applied bool
}

// NewGPIOSink requests heaterLine on chip as an output driven low and, when pwmChip is set,
// exports and enables PWM channel pwmChannel.
func NewGPIOSink(chip string, heaterLine int, pwmChip string, pwmChannel int) (*GPIOSink, error) {
	line, err := gpiocdev.RequestLine(chip, heaterLine, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("thermo-heater"))
	if err != nil {
		return nil, fmt.Errorf("request heater line %d: %w", heaterLine, err)
	}
	s := &GPIOSink{heater: line}

	if pwmChip != "" {
		dir, err := setupPWM(pwmChip, pwmChannel)
		if err != nil {
			line.Close()
			return nil, err
		}
		s.pwmDir = dir
	}
	return s, nil
}

func setupPWM(chipDir string, channel int) (string, error) {
	dir := filepath.Join(chipDir, "pwm"+strconv.Itoa(channel))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := writeSysfs(filepath.Join(chipDir, "export"), channel); err != nil {
			return "", fmt.Errorf("export pwm%d: %w", channel, err)
		}
	}
	if err := writeSysfs(filepath.Join(dir, "period"), servoPeriodNs); err != nil {
		return "", fmt.Errorf("set pwm period: %w", err)
	}
	if err := writeSysfs(filepath.Join(dir, "duty_cycle"), pulseWidth(0)); err != nil {
		return "", fmt.Errorf("set pwm duty: %w", err)
	}
	if err := writeSysfs(filepath.Join(dir, "enable"), 1); err != nil {
		return "", fmt.Errorf("enable pwm: %w", err)
	}
	return dir, nil
}

func writeSysfs(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0o644)
}

// Apply drives the heater line and servo. Unchanged outputs are not rewritten.
func (s *GPIOSink) Apply(out models.ActuatorOutputs) error {
	if s.applied && out == s.last {
		return nil
	}
	v := 0
	if out.HeaterEnabled {
		v = 1
	}
	if err := s.heater.SetValue(v); err != nil {
		return fmt.Errorf("set heater: %w", err)
	}
	if s.pwmDir != "" {
		if err := writeSysfs(filepath.Join(s.pwmDir, "duty_cycle"), pulseWidth(out.Position)); err != nil {
			return fmt.Errorf("set servo position %d: %w", out.Position, err)
		}
	}
	s.last = out
	s.applied = true
	return nil
}

// Close drives outputs off and releases the line.
func (s *GPIOSink) Close() error {
	var errs []error
	if err := s.Apply(models.Off); err != nil {
		errs = append(errs, err)
	}
	if err := s.heater.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close heater line: %w", err))
	}
	return errors.Join(errs...)
}
