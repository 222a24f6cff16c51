package pinctl

import (
	"fmt"
	"strings"
)

// Definitions relating to pins.
type PinIOMode int

// The modes for PinMode. PWM_OUTPUT is an output driven by a pulse train
// rather than a static level.
const (
	INPUT PinIOMode = iota
	OUTPUT
	INPUT_PULLUP
	INPUT_PULLDOWN
	PWM_OUTPUT
)

// String representation of pin IO mode
func (mode PinIOMode) String() string {
	switch mode {
	case INPUT:
		return "INPUT"
	case OUTPUT:
		return "OUTPUT"
	case INPUT_PULLUP:
		return "INPUT_PULLUP"
	case INPUT_PULLDOWN:
		return "INPUT_PULLDOWN"
	case PWM_OUTPUT:
		return "PWM_OUTPUT"
	}
	return ""
}

// IsInput reports whether the mode reads the line.
func (mode PinIOMode) IsInput() bool {
	return mode == INPUT || mode == INPUT_PULLUP || mode == INPUT_PULLDOWN
}

// IsOutput reports whether the mode drives the line.
func (mode PinIOMode) IsOutput() bool {
	return mode == OUTPUT || mode == PWM_OUTPUT
}

// ParseMode converts the board file spelling of a mode ("output", "pwm",
// "input", "input_pulldown", "input_pullup") to a PinIOMode.
func ParseMode(s string) (PinIOMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input", "in":
		return INPUT, nil
	case "output", "out":
		return OUTPUT, nil
	case "input_pullup":
		return INPUT_PULLUP, nil
	case "input_pulldown":
		return INPUT_PULLDOWN, nil
	case "pwm", "pwm_output":
		return PWM_OUTPUT, nil
	}
	return INPUT, fmt.Errorf("%w: unknown pin mode %q", ErrConfig, s)
}

// Convenience constants for digital pin values.
const (
	HIGH = 1
	LOW  = 0
)

// Pin is a BCM GPIO number.
type Pin int

type PinDef struct {
	pin          Pin           // the pin, also in the map key of HardwarePinMap
	hwPinRefs    []string      // the hardware names of the pin, driver specific
	capabilities CapabilitySet // set of capabilities of the pin
}

type HardwarePinMap map[Pin]*PinDef

// Add a pin to the map
func (m HardwarePinMap) add(pin Pin, refs []string, cap CapabilitySet) {
	m[pin] = &PinDef{pin: pin, hwPinRefs: refs, capabilities: cap}
}

// Given a pin number, return it's PinDef, or nil if that pin is not defined in the map
func (m HardwarePinMap) GetPin(pin Pin) *PinDef {
	return m[pin]
}

// Provide a string representation of a logic pin and the capabilties it
// supports.
func (pd *PinDef) String() string {
	return strings.Join(pd.hwPinRefs, ",") + "  cap:" + pd.capabilities.String()
}

// Determine if a pin has a particular capability.
func (pd *PinDef) HasCapability(cap Capability) bool {
	for _, v := range pd.capabilities {
		if v == cap {
			return true
		}
	}
	return false
}

// bcmPinMap builds the pin map shared by the Raspberry Pi drivers: BCM GPIO
// 0..27, each known as "GPIO<n>". PWM is listed on the hardware PWM capable
// lines (12, 13, 18, 19).
func bcmPinMap(general CapabilitySet, pwm CapabilitySet) HardwarePinMap {
	pinMap := make(HardwarePinMap)
	for n := 0; n <= MaxBCMPin; n++ {
		caps := general
		switch n {
		case 12, 13, 18, 19:
			caps = pwm
		}
		pinMap.add(Pin(n), []string{fmt.Sprintf("GPIO%d", n)}, caps)
	}
	return pinMap
}

// MaxBCMPin is the highest GPIO exposed on the 40 pin header.
const MaxBCMPin = 27
