package pinctl

// A driver for Raspberry Pi hardware through periph.io. Lines are looked up
// by their BCM name ("GPIO27"). periph.io has no notion of a claimed line,
// so this driver can't refuse a pin another process is using. The claimed
// set only records what Close has to release.

import (
	"errors"
	"fmt"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type PeriphDriver struct {
	pins    map[Pin]gpio.PinIO // resolved line handles
	claimed map[Pin]bool
	pwm     map[Pin]bool // lines with a running pulse train
}

func NewPeriphDriver() *PeriphDriver {
	return &PeriphDriver{
		pins:    make(map[Pin]gpio.PinIO),
		claimed: make(map[Pin]bool),
		pwm:     make(map[Pin]bool),
	}
}

func (d *PeriphDriver) Init() error {
	if _, err := host.Init(); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: periph host init: %w", ErrPermission, err)
		}
		return fmt.Errorf("%w: periph host init: %w", ErrEnvironment, err)
	}
	return nil
}

func (d *PeriphDriver) Close() error {
	var errs []error
	for pin := range d.claimed {
		errs = append(errs, d.Release(pin))
	}
	return errors.Join(errs...)
}

// resolvePin looks up a GPIO line by number, caching the result.
func (d *PeriphDriver) resolvePin(pin Pin) (gpio.PinIO, error) {
	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	name := fmt.Sprintf("GPIO%d", pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s not found in hardware", ErrEnvironment, name)
	}
	d.pins[pin] = p
	return p, nil
}

func (d *PeriphDriver) PinMode(pin Pin, mode PinIOMode) error {
	p, err := d.resolvePin(pin)
	if err != nil {
		return err
	}

	switch mode {
	case OUTPUT:
		// Drive the level the line already has; only the direction changes.
		err = p.Out(p.Read())
	case PWM_OUTPUT:
		err = p.Out(gpio.Low)
	case INPUT:
		err = p.In(gpio.Float, gpio.NoEdge)
	case INPUT_PULLUP:
		err = p.In(gpio.PullUp, gpio.NoEdge)
	case INPUT_PULLDOWN:
		err = p.In(gpio.PullDown, gpio.NoEdge)
	default:
		err = fmt.Errorf("%w: unsupported mode %d", ErrConfig, mode)
	}
	if err != nil {
		return classifyOSError(err)
	}
	d.claimed[pin] = true
	return nil
}

func (d *PeriphDriver) DigitalWrite(pin Pin, value int) error {
	p, err := d.resolvePin(pin)
	if err != nil {
		return err
	}
	level := gpio.Low
	if value != LOW {
		level = gpio.High
	}
	return classifyOSError(p.Out(level))
}

func (d *PeriphDriver) DigitalRead(pin Pin) (int, error) {
	p, err := d.resolvePin(pin)
	if err != nil {
		return 0, err
	}
	if p.Read() == gpio.High {
		return HIGH, nil
	}
	return LOW, nil
}

func (d *PeriphDriver) PWMWrite(pin Pin, period, duty time.Duration) error {
	p, err := d.resolvePin(pin)
	if err != nil {
		return err
	}
	if duty == 0 {
		d.pwm[pin] = false
		if err := p.Halt(); err != nil {
			return classifyOSError(err)
		}
		return classifyOSError(p.Out(gpio.Low))
	}

	// Convert the high time to gpio.Duty (0-DutyMax).
	ratio := float64(duty) / float64(period)
	freq := physic.Frequency(int64(time.Second/period)) * physic.Hertz
	if err := p.PWM(gpio.Duty(ratio*float64(gpio.DutyMax)), freq); err != nil {
		return classifyOSError(err)
	}
	d.pwm[pin] = true
	return nil
}

// Release stops any pulse train but leaves a static output driven.
func (d *PeriphDriver) Release(pin Pin) error {
	delete(d.claimed, pin)
	if !d.pwm[pin] {
		return nil
	}
	delete(d.pwm, pin)
	p, err := d.resolvePin(pin)
	if err != nil {
		return err
	}
	return classifyOSError(p.Halt())
}

func (d *PeriphDriver) PinMap() HardwarePinMap {
	general := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_INPUT_PULLUP, CAP_INPUT_PULLDOWN}
	pwm := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_INPUT_PULLUP, CAP_INPUT_PULLDOWN, CAP_PWM}
	return bcmPinMap(general, pwm)
}
