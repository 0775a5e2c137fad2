// Package sensor samples the temperature probe and wraps each reading with a validity flag.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thermal_regulator/internal/models"
)

// Disconnected is the value a probe reports when it cannot be reached. No valid reading equals it.
const Disconnected = -127.0

var ErrDisconnected = errors.New("sensor: device disconnected")

// Sensor is a request/response temperature probe.
type Sensor interface {
	// RequestConversion starts a measurement.
	RequestConversion() error
	// ReadCelsius returns the calibrated result of the last conversion, Disconnected, or an error.
	ReadCelsius() (float64, error)
}

// Ingest samples a Sensor and remembers the last valid reading.
type Ingest struct {
	sensor  Sensor
	last    float64
	lastErr error
}

func NewIngest(s Sensor) *Ingest {
	return &Ingest{sensor: s}
}

// Sample performs one request/read cycle. An invalid sample carries the held reading, never the
// sentinel.
func (i *Ingest) Sample() models.TemperatureSample {
	c, err := read(i.sensor)
	i.lastErr = err
	if err != nil {
		return models.TemperatureSample{Celsius: i.last, Valid: false}
	}
	i.last = c
	return models.TemperatureSample{Celsius: c, Valid: true}
}

// Err returns the error of the most recent Sample, nil if it was valid.
func (i *Ingest) Err() error { return i.lastErr }

// Reading returns the last valid reading.
func (i *Ingest) Reading() float64 { return i.last }

func read(s Sensor) (float64, error) {
	if err := s.RequestConversion(); err != nil {
		return 0, fmt.Errorf("request conversion: %w", err)
	}
	c, err := s.ReadCelsius()
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	if c == Disconnected {
		return 0, ErrDisconnected
	}
	return c, nil
}

// WaitReady polls s until it produces a valid reading or timeout elapses. It never blocks past
// the timeout, so a missing probe delays startup instead of hanging it.
func WaitReady(ctx context.Context, s Sensor, timeout, interval time.Duration) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		c, err := read(s)
		if err == nil {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("sensor not ready after %v: %w", timeout, err)
		case <-t.C:
		}
	}
}
