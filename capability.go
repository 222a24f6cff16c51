package pinctl

// Definitions for capabilities.
import (
	"strings"
)

// Define a generic way to represent pin capabilities.
type Capability int

const (
	CAP_INPUT          Capability = iota // digital input
	CAP_OUTPUT                           // digital output
	CAP_INPUT_PULLUP                     // digital input with pull up
	CAP_INPUT_PULLDOWN                   // digital input with pull down
	CAP_PWM                              // pulse width modulated output
)

// This represents a set of capabilities that a pin may have. There may be multiple pins on a device that have identical
// capability set.
type CapabilitySet []Capability

func (c Capability) String() string {
	switch c {
	case CAP_INPUT:
		return "input"
	case CAP_OUTPUT:
		return "output"
	case CAP_INPUT_PULLUP:
		return "input_pullup"
	case CAP_INPUT_PULLDOWN:
		return "input_pulldown"
	case CAP_PWM:
		return "pwm"
	}
	return ""
}

func (cs CapabilitySet) String() string {
	s := []string{}
	for _, c := range cs {
		s = append(s, c.String())
	}
	return strings.Join(s, ",")
}

// requiredCapability returns the capability a pin needs to be put in mode.
func requiredCapability(mode PinIOMode) Capability {
	switch mode {
	case OUTPUT:
		return CAP_OUTPUT
	case INPUT_PULLUP:
		return CAP_INPUT_PULLUP
	case INPUT_PULLDOWN:
		return CAP_INPUT_PULLDOWN
	case PWM_OUTPUT:
		return CAP_PWM
	}
	return CAP_INPUT
}
