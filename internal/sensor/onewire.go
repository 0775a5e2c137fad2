package sensor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultW1Root is where the Linux w1 bus exposes attached devices.
const DefaultW1Root = "/sys/bus/w1/devices"

// OneWire reads a DS18B20 probe through the kernel w1_therm driver.
type OneWire struct {
	path string // .../28-xxxxxxxxxxxx/w1_slave
	raw  []byte
}

// NewOneWire opens device under root. An empty device selects the first 28-* probe found.
func NewOneWire(root, device string) (*OneWire, error) {
	if root == "" {
		root = DefaultW1Root
	}
	if device == "" {
		matches, err := filepath.Glob(filepath.Join(root, "28-*"))
		if err != nil {
			return nil, fmt.Errorf("scan w1 bus: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no DS18B20 probe under %s: %w", root, ErrDisconnected)
		}
		device = filepath.Base(matches[0])
	}
	return &OneWire{path: filepath.Join(root, device, "w1_slave")}, nil
}

// RequestConversion reads w1_slave; the kernel driver performs the conversion on read.
func (o *OneWire) RequestConversion() error {
	b, err := os.ReadFile(o.path)
	if err != nil {
		o.raw = nil
		if errors.Is(err, os.ErrNotExist) {
			return ErrDisconnected
		}
		return fmt.Errorf("read %s: %w", o.path, err)
	}
	o.raw = b
	return nil
}

func (o *OneWire) ReadCelsius() (float64, error) {
	if o.raw == nil {
		return Disconnected, nil
	}
	return parseW1Slave(string(o.raw))
}

// parseW1Slave decodes the two-line w1_therm output:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func parseW1Slave(s string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return Disconnected, fmt.Errorf("w1_slave: short read")
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return Disconnected, nil
	}
	idx := strings.LastIndex(lines[1], "t=")
	if idx < 0 {
		return Disconnected, fmt.Errorf("w1_slave: missing t= field")
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][idx+2:]))
	if err != nil {
		return Disconnected, fmt.Errorf("w1_slave: %w", err)
	}
	return float64(milli) / 1000, nil
}
