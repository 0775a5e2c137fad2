package actuator

import "thermal_regulator/internal/models"

// FakeSink records applied outputs for test assertions.
type FakeSink struct {
	// Applied contains every Apply call in order.
	Applied []models.ActuatorOutputs
	// ApplyError, if set, is returned by Apply.
	ApplyError error
	Closed     bool
}

func NewFakeSink() *FakeSink { return &FakeSink{} }

func (f *FakeSink) Apply(out models.ActuatorOutputs) error {
	if f.ApplyError != nil {
		return f.ApplyError
	}
	f.Applied = append(f.Applied, out)
	return nil
}

// Last returns the most recent outputs, or Off if nothing was applied.
func (f *FakeSink) Last() models.ActuatorOutputs {
	if len(f.Applied) == 0 {
		return models.Off
	}
	return f.Applied[len(f.Applied)-1]
}

func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// Multi applies outputs to every sink and returns the first error.
type Multi []Sink

func (m Multi) Apply(out models.ActuatorOutputs) error {
	var firstErr error
	for _, s := range m {
		if err := s.Apply(out); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
