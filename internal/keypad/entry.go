package keypad

import "thermal_regulator/internal/models"

// ResultKind classifies what a key press did.
type ResultKind int

const (
	ResultNone ResultKind = iota // ignored key
	ResultStarted
	ResultDigit
	ResultAccepted
	ResultRejected
	ResultCancelled
)

// Result is the outcome of a single key press.
type Result struct {
	Kind    ResultKind
	Command models.SetpointCommand // set when Kind == ResultAccepted
	Digits  string                 // accumulator contents after the press (before reset on confirm)
	Err     error                  // set when Kind == ResultRejected
}

// Entry is the digit accumulator driven by key presses.
type Entry struct {
	active bool
	digits []byte
}

// Active reports whether an entry is in progress.
func (e *Entry) Active() bool { return e.active }

// Press feeds one key into the accumulator.
func (e *Entry) Press(k Key) Result {
	switch {
	case k == KeyBegin:
		e.active = true
		e.digits = e.digits[:0]
		return Result{Kind: ResultStarted}

	case k == KeyCancel:
		e.active = false
		e.digits = e.digits[:0]
		return Result{Kind: ResultCancelled}

	case k == KeyConfirm && e.active:
		digits := string(e.digits)
		e.digits = e.digits[:0]
		cmd, err := Validate(digits)
		if err != nil {
			// the entry stays open so the operator can retype
			return Result{Kind: ResultRejected, Digits: digits, Err: err}
		}
		e.active = false
		return Result{Kind: ResultAccepted, Command: cmd, Digits: digits}

	case e.active && k.IsDigit():
		if len(e.digits) < bufferCap {
			e.digits = append(e.digits, byte(k))
		}
		return Result{Kind: ResultDigit, Digits: string(e.digits)}
	}
	return Result{Kind: ResultNone}
}
