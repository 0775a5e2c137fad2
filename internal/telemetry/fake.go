package telemetry

import "thermal_regulator/internal/models"

// FakeRemote records notifications for test assertions.
type FakeRemote struct {
	// Live controls the return value of Connected.
	Live bool
	// Sent contains every snapshot passed to Notify.
	Sent []models.ControllerSnapshot
	// NotifyError, if set, is returned by Notify.
	NotifyError error
}

func (f *FakeRemote) Connected() bool { return f.Live }

func (f *FakeRemote) Notify(s models.ControllerSnapshot) error {
	if f.NotifyError != nil {
		return f.NotifyError
	}
	f.Sent = append(f.Sent, s)
	return nil
}
