//go:build linux

package keypad

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Matrix scans a 4x4 key matrix wired to GPIO lines: rows driven low one at a time, columns
// read with pull-ups. A key is reported once per press.
type Matrix struct {
	rows *gpiocdev.Lines
	cols *gpiocdev.Lines
	held Key
}

// NewMatrix requests the row and column lines on chip (e.g. "gpiochip0").
func NewMatrix(chip string, rowLines, colLines []int) (*Matrix, error) {
	if len(rowLines) != len(Layout) || len(colLines) != len(Layout[0]) {
		return nil, fmt.Errorf("keypad matrix needs %d rows and %d cols, got %d and %d",
			len(Layout), len(Layout[0]), len(rowLines), len(colLines))
	}
	idle := []int{1, 1, 1, 1}
	rows, err := gpiocdev.RequestLines(chip, rowLines, gpiocdev.AsOutput(idle...), gpiocdev.WithConsumer("thermo-keypad"))
	if err != nil {
		return nil, fmt.Errorf("request keypad rows %v: %w", rowLines, err)
	}
	cols, err := gpiocdev.RequestLines(chip, colLines, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithConsumer("thermo-keypad"))
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("request keypad cols %v: %w", colLines, err)
	}
	return &Matrix{rows: rows, cols: cols}, nil
}

// Poll scans the matrix once. Scan errors read as "no key".
func (m *Matrix) Poll() (Key, bool) {
	k, err := m.scan()
	if err != nil {
		return 0, false
	}
	if k == m.held {
		return 0, false
	}
	m.held = k
	if k == 0 {
		return 0, false
	}
	return k, true
}

func (m *Matrix) scan() (Key, error) {
	drive := make([]int, len(Layout))
	vals := make([]int, len(Layout[0]))
	defer func() {
		for i := range drive {
			drive[i] = 1
		}
		_ = m.rows.SetValues(drive)
	}()

	for r := range Layout {
		for i := range drive {
			drive[i] = 1
		}
		drive[r] = 0
		if err := m.rows.SetValues(drive); err != nil {
			return 0, fmt.Errorf("drive row %d: %w", r, err)
		}
		if err := m.cols.Values(vals); err != nil {
			return 0, fmt.Errorf("read cols: %w", err)
		}
		for c, v := range vals {
			if v == 0 {
				return Layout[r][c], nil
			}
		}
	}
	return 0, nil
}

// Close releases the GPIO lines.
func (m *Matrix) Close() error {
	var firstErr error
	if err := m.rows.Close(); err != nil {
		firstErr = fmt.Errorf("close keypad rows: %w", err)
	}
	if err := m.cols.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close keypad cols: %w", err)
	}
	return firstErr
}
