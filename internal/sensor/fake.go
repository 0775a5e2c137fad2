package sensor

// FakeSensor is a test double that returns scripted readings.
type FakeSensor struct {
	// Readings are returned in order; the last one repeats once exhausted.
	Readings []float64
	// RequestError, if set, is returned by RequestConversion.
	RequestError error

	index    int
	Requests int
}

func NewFakeSensor(readings ...float64) *FakeSensor {
	return &FakeSensor{Readings: readings}
}

func (f *FakeSensor) RequestConversion() error {
	f.Requests++
	return f.RequestError
}

func (f *FakeSensor) ReadCelsius() (float64, error) {
	if len(f.Readings) == 0 {
		return Disconnected, nil
	}
	c := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return c, nil
}
