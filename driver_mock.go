package pinctl

// A mock driver used for unit testing and dry runs.
import (
	"fmt"
	"log/slog"
	"time"
)

// MockPWM is the last pulse train written to a mock pin.
type MockPWM struct {
	Period time.Duration
	Duty   time.Duration
}

// MockDriver simulates a Raspberry Pi header. Its state outlives a Host, so
// a test can hand the same MockDriver to a second Host to model the next
// process on the same board.
type MockDriver struct {
	// InitError is returned by Init when set, to simulate missing hardware
	// or missing privileges.
	InitError error

	pinModes  map[Pin]PinIOMode
	pinValues map[Pin]int
	driven    map[Pin]int // levels applied from outside, e.g. a button
	pwm       map[Pin]MockPWM
	holders   map[Pin]string // claims by other simulated processes
	claimed   map[Pin]bool   // claims by this driver
	failures  map[Pin]error  // injected write failures
	log       *slog.Logger
}

// NewMockDriver returns a mock with every line floating low in input mode.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		pinModes:  make(map[Pin]PinIOMode),
		pinValues: make(map[Pin]int),
		driven:    make(map[Pin]int),
		pwm:       make(map[Pin]MockPWM),
		holders:   make(map[Pin]string),
		claimed:   make(map[Pin]bool),
		failures:  make(map[Pin]error),
	}
}

// SetLogger makes the mock log every call at debug level.
func (d *MockDriver) SetLogger(log *slog.Logger) {
	d.log = log
}

func (d *MockDriver) Init() error {
	return d.InitError
}

// Close keeps the simulated line state so another Host can observe it.
func (d *MockDriver) Close() error {
	return nil
}

// Mock records the pin mode being assigned.
func (d *MockDriver) PinMode(pin Pin, mode PinIOMode) error {
	d.trace("PinMode", "pin", int(pin), "mode", mode.String())
	if holder, ok := d.holders[pin]; ok {
		return fmt.Errorf("%w: pin %d held by %s", ErrBusy, pin, holder)
	}
	d.claimed[pin] = true
	d.pinModes[pin] = mode

	switch mode {
	case INPUT_PULLUP:
		d.pinValues[pin] = d.inputLevel(pin, HIGH)
	case INPUT_PULLDOWN, INPUT:
		d.pinValues[pin] = d.inputLevel(pin, LOW)
	case PWM_OUTPUT:
		d.pinValues[pin] = LOW
	}
	// OUTPUT keeps whatever level the line had.
	return nil
}

// inputLevel is the level an input reads: the externally driven level, or
// the bias when nothing drives it.
func (d *MockDriver) inputLevel(pin Pin, bias int) int {
	if v, ok := d.driven[pin]; ok {
		return v
	}
	return bias
}

// Mock emulates DigitalWrite by writing the value to pinValues.
func (d *MockDriver) DigitalWrite(pin Pin, value int) error {
	d.trace("DigitalWrite", "pin", int(pin), "value", value)
	if !d.claimed[pin] {
		return fmt.Errorf("%w: pin %d is not claimed", ErrConfig, pin)
	}
	if err := d.failures[pin]; err != nil {
		return err
	}
	d.pinValues[pin] = value
	return nil
}

func (d *MockDriver) DigitalRead(pin Pin) (int, error) {
	if !d.claimed[pin] {
		return 0, fmt.Errorf("%w: pin %d is not claimed", ErrConfig, pin)
	}
	return d.pinValues[pin], nil
}

// Mock stores the pulse train; a line with a non-zero duty reads HIGH.
func (d *MockDriver) PWMWrite(pin Pin, period, duty time.Duration) error {
	d.trace("PWMWrite", "pin", int(pin), "period", period, "duty", duty)
	if !d.claimed[pin] {
		return fmt.Errorf("%w: pin %d is not claimed", ErrConfig, pin)
	}
	if err := d.failures[pin]; err != nil {
		return err
	}
	d.pwm[pin] = MockPWM{Period: period, Duty: duty}
	if duty > 0 {
		d.pinValues[pin] = HIGH
	} else {
		d.pinValues[pin] = LOW
	}
	return nil
}

func (d *MockDriver) Release(pin Pin) error {
	d.trace("Release", "pin", int(pin))
	delete(d.claimed, pin)
	return nil
}

// Mock exposes the same BCM lines as the Raspberry Pi drivers, with pull
// up and pull down support on all of them.
func (d *MockDriver) PinMap() HardwarePinMap {
	general := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_INPUT_PULLUP, CAP_INPUT_PULLDOWN}
	pwm := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_INPUT_PULLUP, CAP_INPUT_PULLDOWN, CAP_PWM}
	return bcmPinMap(general, pwm)
}

func (d *MockDriver) trace(op string, args ...any) {
	if d.log != nil {
		d.log.Debug("mock "+op, args...)
	}
}

func (d *MockDriver) MockGetPinMode(pin Pin) PinIOMode {
	return d.pinModes[pin]
}

func (d *MockDriver) MockGetPinValue(pin Pin) int {
	return d.pinValues[pin]
}

// MockSetPinValue sets the line level directly, e.g. the state a line is in
// before a process touches it.
func (d *MockDriver) MockSetPinValue(pin Pin, value int) {
	d.pinValues[pin] = value
}

func (d *MockDriver) MockGetPWM(pin Pin) MockPWM {
	return d.pwm[pin]
}

// MockDrive applies a level from outside the board, as a pressed button
// does. Output lines are not affected.
func (d *MockDriver) MockDrive(pin Pin, value int) {
	d.driven[pin] = value
	if d.pinModes[pin].IsInput() {
		d.pinValues[pin] = value
	}
}

// MockFloat removes an external level; an input falls back to its bias.
func (d *MockDriver) MockFloat(pin Pin) {
	delete(d.driven, pin)
	switch d.pinModes[pin] {
	case INPUT_PULLUP:
		d.pinValues[pin] = HIGH
	case INPUT, INPUT_PULLDOWN:
		d.pinValues[pin] = LOW
	}
}

// MockClaim marks pin as held by another process.
func (d *MockDriver) MockClaim(pin Pin, holder string) {
	d.holders[pin] = holder
}

// MockUnclaim drops a claim made with MockClaim.
func (d *MockDriver) MockUnclaim(pin Pin) {
	delete(d.holders, pin)
}

// MockFailWrites makes every DigitalWrite and PWMWrite on pin return err.
// A nil err clears the failure.
func (d *MockDriver) MockFailWrites(pin Pin, err error) {
	if err == nil {
		delete(d.failures, pin)
		return
	}
	d.failures[pin] = err
}

// MockClaimed reports whether this driver currently holds pin.
func (d *MockDriver) MockClaimed(pin Pin) bool {
	return d.claimed[pin]
}
