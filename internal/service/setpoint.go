package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"thermal_regulator/internal/keypad"
	"thermal_regulator/internal/models"
)

var (
	// ErrInputBusy is returned when the key queue cannot take the whole input.
	ErrInputBusy = errors.New("input queue full, retry")
	// ErrTooManyKeys is returned for a key run that could never be queued in one piece.
	ErrTooManyKeys = fmt.Errorf("at most %d keys per request", keypad.MaxRun)
)

type SetpointService struct {
	keys *keypad.Queue
}

func NewSetpointService(keys *keypad.Queue) *SetpointService {
	return &SetpointService{keys: keys}
}

// PressKeys queues a run of keypad keys exactly as if they were pressed locally. Every key is
// checked before any is queued.
func (s *SetpointService) PressKeys(ctx context.Context, raw string) error {
	if raw == "" {
		return errors.New("no keys")
	}
	if n := utf8.RuneCountInString(raw); n > keypad.MaxRun {
		return fmt.Errorf("%w: got %d", ErrTooManyKeys, n)
	}
	keys := make([]keypad.Key, 0, len(raw))
	for _, r := range raw {
		k, err := keypad.ParseKey(string(r))
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}
	return s.push(ctx, keys...)
}

// SetTarget validates target and queues it as a complete keypad entry. The loop applies it
// through the same validator, so remote and local entry share one path.
func (s *SetpointService) SetTarget(ctx context.Context, target int) error {
	if target <= 0 || target > models.MaxTemp {
		return fmt.Errorf("%w: got %d", keypad.ErrOutOfRange, target)
	}
	digits := fmt.Sprintf("%02d", target)
	if _, err := keypad.Validate(digits); err != nil {
		return err
	}

	seq := make([]keypad.Key, 0, len(digits)+2)
	seq = append(seq, keypad.KeyBegin)
	for _, d := range digits {
		seq = append(seq, keypad.Key(d))
	}
	seq = append(seq, keypad.KeyConfirm)
	return s.push(ctx, seq...)
}

// Cancel queues the cancel key: target cleared and outputs off.
func (s *SetpointService) Cancel(ctx context.Context) error {
	return s.push(ctx, keypad.KeyCancel)
}

func (s *SetpointService) push(ctx context.Context, keys ...keypad.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.keys.PushAll(keys...) {
		return ErrInputBusy
	}
	return nil
}
