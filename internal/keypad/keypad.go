// Package keypad turns operator key events into validated setpoint commands.
// Sources deliver keys without blocking; Entry accumulates them and decides.
package keypad

import (
	"errors"
	"fmt"
	"strconv"

	"thermal_regulator/internal/models"
)

// Key is a single key on the 4x4 operator keypad.
type Key rune

// Reserved keys. Digits '0'..'9' are accepted only while an entry is open.
const (
	KeyBegin   Key = 'A'
	KeyConfirm Key = '#'
	KeyCancel  Key = 'C'
)

// Layout is the keypad matrix, rows top to bottom.
var Layout = [4][4]Key{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

const (
	minDigits = 2
	maxDigits = 3
	// bufferCap bounds the accumulator; anything past maxDigits is rejected at confirmation anyway.
	bufferCap = 8
)

var (
	ErrDigitCount = fmt.Errorf("setpoint needs %d-%d digits", minDigits, maxDigits)
	ErrOutOfRange = fmt.Errorf("setpoint out of range (1-%d)", models.MaxTemp)
)

// IsDigit reports whether k is one of '0'..'9'.
func (k Key) IsDigit() bool { return k >= '0' && k <= '9' }

// Valid reports whether k appears in Layout.
func (k Key) Valid() bool {
	for _, row := range Layout {
		for _, key := range row {
			if key == k {
				return true
			}
		}
	}
	return false
}

// ParseKey converts a single-character string into a Key.
func ParseKey(s string) (Key, error) {
	r := []rune(s)
	if len(r) != 1 || !Key(r[0]).Valid() {
		return 0, fmt.Errorf("unknown key %q", s)
	}
	return Key(r[0]), nil
}

// Validate parses an accumulated digit sequence into a setpoint.
func Validate(digits string) (models.SetpointCommand, error) {
	if len(digits) < minDigits || len(digits) > maxDigits {
		return models.NoTarget, fmt.Errorf("%w: got %d", ErrDigitCount, len(digits))
	}
	v, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return models.NoTarget, fmt.Errorf("parse setpoint %q: %w", digits, err)
	}
	if v == 0 || v > models.MaxTemp {
		return models.NoTarget, fmt.Errorf("%w: got %d", ErrOutOfRange, v)
	}
	return models.SetpointCommand(v), nil
}

// IsRejection reports whether err came from validating operator input.
func IsRejection(err error) bool {
	return errors.Is(err, ErrDigitCount) || errors.Is(err, ErrOutOfRange)
}
