//go:build !linux

package keypad

import "errors"

// Matrix is not available on non-Linux platforms.
type Matrix struct{}

// NewMatrix returns an error on non-Linux platforms.
func NewMatrix(chip string, rowLines, colLines []int) (*Matrix, error) {
	return nil, errors.New("keypad: gpio matrix not supported on this platform (requires Linux)")
}

func (m *Matrix) Poll() (Key, bool) { return 0, false }

func (m *Matrix) Close() error { return nil }
