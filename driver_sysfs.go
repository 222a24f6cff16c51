// A GPIO driver that uses the Linux sysfs interface under /sys/class/gpio. The kernel refuses to export a line
// twice, which gives exclusive ownership of a pin across processes. sysfs has no bias or PWM control, so the pin
// map offers plain input and output only.

package pinctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultSysfsRoot is where the kernel exposes the GPIO class.
const DefaultSysfsRoot = "/sys/class/gpio"

type SysfsDriver struct {
	root     string
	openPins map[Pin]*sysfsOpenPin
}

type sysfsOpenPin struct {
	pin       Pin
	baseName  string
	valueFile *os.File
}

// NewSysfsDriver returns a driver rooted at root, or at DefaultSysfsRoot when
// root is empty.
func NewSysfsDriver(root string) *SysfsDriver {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsDriver{root: root, openPins: make(map[Pin]*sysfsOpenPin)}
}

func (d *SysfsDriver) Init() error {
	if _, err := os.Stat(filepath.Join(d.root, "export")); err != nil {
		return fmt.Errorf("%w: no sysfs gpio interface at %s: %w", ErrEnvironment, d.root, err)
	}
	return nil
}

// disables the driver and releases any pins still exported.
func (d *SysfsDriver) Close() error {
	var errs []error
	for pin := range d.openPins {
		errs = append(errs, d.Release(pin))
	}
	return errors.Join(errs...)
}

func (d *SysfsDriver) PinMode(pin Pin, mode PinIOMode) error {
	var dir string
	switch mode {
	case OUTPUT:
		dir = "out"
	case INPUT:
		dir = "in"
	default:
		return fmt.Errorf("%w: sysfs can't set mode %s", ErrConfig, mode)
	}

	openPin := d.openPins[pin]
	if openPin == nil {
		var err error
		if openPin, err = d.export(pin); err != nil {
			return err
		}
	}
	return openPin.direction(dir)
}

func (d *SysfsDriver) DigitalWrite(pin Pin, value int) error {
	openPin := d.openPins[pin]
	if openPin == nil {
		return fmt.Errorf("%w: pin %d is being written but has not been exported", ErrConfig, pin)
	}
	return openPin.setValue(value)
}

func (d *SysfsDriver) DigitalRead(pin Pin) (int, error) {
	openPin := d.openPins[pin]
	if openPin == nil {
		return 0, fmt.Errorf("%w: pin %d is being read but has not been exported", ErrConfig, pin)
	}
	return openPin.getValue()
}

func (d *SysfsDriver) PWMWrite(pin Pin, period, duty time.Duration) error {
	return fmt.Errorf("%w: sysfs gpio has no pwm", ErrConfig)
}

// Release closes the value file and unexports the line.
func (d *SysfsDriver) Release(pin Pin) error {
	openPin := d.openPins[pin]
	if openPin == nil {
		return nil
	}
	delete(d.openPins, pin)
	if openPin.valueFile != nil {
		openPin.valueFile.Close()
	}
	return classifyOSError(writeStringToFile(filepath.Join(d.root, "unexport"), strconv.Itoa(int(pin))))
}

func (d *SysfsDriver) PinMap() HardwarePinMap {
	general := CapabilitySet{CAP_INPUT, CAP_OUTPUT}
	return bcmPinMap(general, general)
}

// Write the line number to export. The kernel answers EBUSY when the line is
// already exported, by us or anyone else.
func (d *SysfsDriver) export(pin Pin) (*sysfsOpenPin, error) {
	err := writeStringToFile(filepath.Join(d.root, "export"), strconv.Itoa(int(pin)))
	if err != nil {
		return nil, classifyOSError(err)
	}

	op := &sysfsOpenPin{pin: pin, baseName: filepath.Join(d.root, "gpio"+strconv.Itoa(int(pin)))}
	d.openPins[pin] = op
	return op, nil
}

// Set the direction of an exported line. For "out" the current value is
// written as "high" or "low" so the level doesn't glitch.
func (op *sysfsOpenPin) direction(dir string) error {
	if op.valueFile == nil {
		// Keep the value file open for the life of the pin; re-seeking and writing a new value is an order of
		// magnitude faster than re-opening it for every write.
		f, err := os.OpenFile(filepath.Join(op.baseName, "value"), os.O_RDWR, 0)
		if err != nil {
			return classifyOSError(err)
		}
		op.valueFile = f
	}

	setting := dir
	if dir == "out" {
		v, err := op.getValue()
		if err != nil {
			return err
		}
		setting = "low"
		if v == HIGH {
			setting = "high"
		}
	}
	return classifyOSError(writeStringToFile(filepath.Join(op.baseName, "direction"), setting))
}

// Get the value. Will return HIGH or LOW
func (op *sysfsOpenPin) getValue() (int, error) {
	b := make([]byte, 1)
	n, err := op.valueFile.ReadAt(b, 0)
	if n == 0 && err != nil {
		return 0, classifyOSError(err)
	}
	if b[0] == '1' {
		return HIGH, nil
	}
	return LOW, nil
}

// Set the value, Expects HIGH or LOW
func (op *sysfsOpenPin) setValue(value int) error {
	if _, err := op.valueFile.Seek(0, 0); err != nil {
		return classifyOSError(err)
	}
	s := "0"
	if value != LOW {
		s = "1"
	}
	_, err := op.valueFile.WriteString(s)
	return classifyOSError(err)
}

func writeStringToFile(path string, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
