/*
Package pinctl implements a small Arduino-like interface for the GPIO lines
of the chess robot controller, with configurable backends depending on the
device. Hardware is reached only through a HardwareDriver, so the real
periph.io and sysfs backends can be swapped for the MockDriver in tests.
*/
package pinctl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"
)

// This is the interface that hardware drivers implement.
type HardwareDriver interface {
	// Initialise the driver after creation. Fails with ErrEnvironment or
	// ErrPermission when the hardware can't be reached.
	Init() error

	// Set mode of a pin, claiming it for this process if it isn't already.
	// Switching to OUTPUT keeps the level the line currently has.
	PinMode(pin Pin, mode PinIOMode) error

	// Write digital output
	DigitalWrite(pin Pin, value int) error

	// Read the current level of a claimed pin, input or output
	DigitalRead(pin Pin) (int, error)

	// Drive a PWM pin with the given period and high time. A zero duty
	// stops the pulse train.
	PWMWrite(pin Pin, period, duty time.Duration) error

	// Give the pin back. The electrical mode is left as it is.
	Release(pin Pin) error

	// Return the pin map for the driver, listing all supported pins and their capabilities
	PinMap() HardwarePinMap

	// Close the driver before destruction
	Close() error
}

// A private type for associating a pin's definition with the current IO mode
// and any other dynamic properties of the pin.
type assignedPin struct {
	pinDef    *PinDef   // definition of pin
	pinIOMode PinIOMode // mode that was assigned to this pin
}

// Host owns one driver and the set of pins this process has claimed
// through it. A Host is not safe for concurrent use.
type Host struct {
	driver      HardwareDriver
	definedPins HardwarePinMap
	// A map of pin numbers to the assigned dynamic properties of the pin. Set
	// by PinMode and used by other functions to check the request is valid
	// given the assigned properties of the pin.
	assignedPins map[Pin]*assignedPin
	log          *slog.Logger
}

// NewHost initialises the driver and loads the capabilities of the device.
func NewHost(d HardwareDriver, log *slog.Logger) (*Host, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: no hardware driver configured", ErrEnvironment)
	}
	if log == nil {
		log = slog.Default()
	}
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("initialise driver: %w", classifyOSError(err))
	}
	return &Host{
		driver:       d,
		definedPins:  d.PinMap(),
		assignedPins: make(map[Pin]*assignedPin),
		log:          log,
	}, nil
}

// Retrieve the hardware driver.
func (h *Host) Driver() HardwareDriver {
	return h.driver
}

// Returns the map of the hardware pins supported by the driver.
func (h *Host) DefinedPins() HardwarePinMap {
	return h.definedPins
}

// Set the mode of a pin. Analogous to Arduino pin mode. The first call for a
// pin claims it; later calls on the same Host only change the mode.
func (h *Host) PinMode(pin Pin, mode PinIOMode) error {
	pd := h.definedPins[pin]
	if pd == nil {
		return pinError(pin, "PinMode", fmt.Errorf("%w: pin %d is not defined by the current driver", ErrConfig, pin))
	}
	if err := checkPinMode(mode, pd); err != nil {
		return pinError(pin, "PinMode", err)
	}

	if err := h.driver.PinMode(pin, mode); err != nil {
		return pinError(pin, "PinMode", classifyOSError(err))
	}

	h.assignedPins[pin] = &assignedPin{pinDef: pd, pinIOMode: mode}
	h.log.Debug("pin mode set", "pin", int(pin), "mode", mode.String())
	return nil
}

func checkPinMode(mode PinIOMode, pd *PinDef) error {
	if pd.HasCapability(requiredCapability(mode)) {
		return nil
	}
	return fmt.Errorf("%w: pin %d can't be set to mode %s because it does not support that capability", ErrConfig, pd.pin, mode.String())
}

// Mode returns the mode this Host assigned to pin.
func (h *Host) Mode(pin Pin) (PinIOMode, bool) {
	a := h.assignedPins[pin]
	if a == nil {
		return INPUT, false
	}
	return a.pinIOMode, true
}

// Assigned lists the pins this Host holds, in ascending order.
func (h *Host) Assigned() []Pin {
	pins := make([]Pin, 0, len(h.assignedPins))
	for pin := range h.assignedPins {
		pins = append(pins, pin)
	}
	slices.Sort(pins)
	return pins
}

// Write a value to a digital pin
func (h *Host) DigitalWrite(pin Pin, value int) error {
	a := h.assignedPins[pin]
	if a == nil {
		return pinError(pin, "DigitalWrite", fmt.Errorf("%w: pin mode has not been set", ErrConfig))
	}
	if a.pinIOMode != OUTPUT {
		return pinError(pin, "DigitalWrite", fmt.Errorf("%w: pin mode is not set for output", ErrConfig))
	}
	if value != LOW && value != HIGH {
		return pinError(pin, "DigitalWrite", fmt.Errorf("%w: level must be 0 or 1, got %d", ErrConfig, value))
	}

	return pinError(pin, "DigitalWrite", classifyOSError(h.driver.DigitalWrite(pin, value)))
}

// Read the level of a digital pin. Output pins report the level they drive.
func (h *Host) DigitalRead(pin Pin) (int, error) {
	if h.assignedPins[pin] == nil {
		return 0, pinError(pin, "DigitalRead", fmt.Errorf("%w: pin mode has not been set", ErrConfig))
	}

	v, err := h.driver.DigitalRead(pin)
	if err != nil {
		return 0, pinError(pin, "DigitalRead", classifyOSError(err))
	}
	return v, nil
}

// Drive a PWM pin. duty must lie within [0, period].
func (h *Host) PWMWrite(pin Pin, period, duty time.Duration) error {
	a := h.assignedPins[pin]
	if a == nil {
		return pinError(pin, "PWMWrite", fmt.Errorf("%w: pin mode has not been set", ErrConfig))
	}
	if a.pinIOMode != PWM_OUTPUT {
		return pinError(pin, "PWMWrite", fmt.Errorf("%w: pin mode is not set for pwm", ErrConfig))
	}
	if period <= 0 || duty < 0 || duty > period {
		return pinError(pin, "PWMWrite", fmt.Errorf("%w: duty %s outside period %s", ErrConfig, duty, period))
	}

	return pinError(pin, "PWMWrite", classifyOSError(h.driver.PWMWrite(pin, period, duty)))
}

// Release gives a single pin back to the system.
func (h *Host) Release(pin Pin) error {
	if h.assignedPins[pin] == nil {
		return nil
	}
	delete(h.assignedPins, pin)
	if err := h.driver.Release(pin); err != nil {
		return pinError(pin, "Release", classifyOSError(err))
	}
	h.log.Debug("pin released", "pin", int(pin))
	return nil
}

// Close releases every pin this Host holds and closes the driver. Modes are
// left as they were set.
func (h *Host) Close() error {
	var errs []error
	for _, pin := range h.Assigned() {
		errs = append(errs, h.Release(pin))
	}
	errs = append(errs, h.driver.Close())
	return errors.Join(errs...)
}

// DebugPinMap writes the driver's pins and capabilities, in pin order.
func (h *Host) DebugPinMap(w io.Writer) {
	pins := make([]Pin, 0, len(h.definedPins))
	for pin := range h.definedPins {
		pins = append(pins, pin)
	}
	slices.Sort(pins)

	fmt.Fprintln(w, "HardwarePinMap:")
	for _, pin := range pins {
		fmt.Fprintf(w, "Pin %d: %s\n", pin, h.definedPins[pin].String())
	}
}

// Map re-maps a number from one range to another, like the Arduino map().
func Map(value, fromLow, fromHigh, toLow, toHigh int) int {
	return (value-fromLow)*(toHigh-toLow)/(fromHigh-fromLow) + toLow
}
