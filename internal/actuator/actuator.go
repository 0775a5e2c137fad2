// Package actuator applies commanded outputs to the heater and positional actuator.
// The real implementation uses the Linux GPIO character device and sysfs PWM.
// The fake implementation allows testing without hardware.
package actuator

import "thermal_regulator/internal/models"

// Sink applies actuator outputs. Apply is idempotent: re-applying the same outputs has no
// further effect.
type Sink interface {
	Apply(out models.ActuatorOutputs) error
	Close() error
}

// Servo pulse range for a standard hobby servo at 50 Hz.
const (
	servoPeriodNs   = 20_000_000
	servoMinPulseNs = 500_000
	servoMaxPulseNs = 2_500_000
	servoMaxAngle   = 180
)

// pulseWidth maps an actuator position (degrees) to a PWM duty cycle in nanoseconds.
func pulseWidth(position int) int {
	if position < 0 {
		position = 0
	}
	if position > servoMaxAngle {
		position = servoMaxAngle
	}
	return servoMinPulseNs + position*(servoMaxPulseNs-servoMinPulseNs)/servoMaxAngle
}
