// Package output drives a single digital output line, such as a stepper
// driver's step or direction input.
package output

import (
	"errors"
	"time"

	"github.com/robochess/pinctl"
)

type Output struct {
	host *pinctl.Host
	Pin  pinctl.Pin
}

// New claims pin as an output and drives it low.
func New(h *pinctl.Host, pin pinctl.Pin) (*Output, error) {
	if err := h.PinMode(pin, pinctl.OUTPUT); err != nil {
		return nil, err
	}
	o := &Output{host: h, Pin: pin}
	if err := o.Off(); err != nil {
		return nil, errors.Join(err, h.Release(pin))
	}
	return o, nil
}

func (o *Output) On() error  { return o.host.DigitalWrite(o.Pin, pinctl.HIGH) }
func (o *Output) Off() error { return o.host.DigitalWrite(o.Pin, pinctl.LOW) }

// Value returns the level the line is driven to.
func (o *Output) Value() (int, error) {
	return o.host.DigitalRead(o.Pin)
}

// Toggle inverts the line and returns the new level.
func (o *Output) Toggle() (int, error) {
	v, err := o.Value()
	if err != nil {
		return 0, err
	}
	next := pinctl.HIGH
	if v == pinctl.HIGH {
		next = pinctl.LOW
	}
	return next, o.host.DigitalWrite(o.Pin, next)
}

// Blink pulses the line n times, high for period then low for period, and
// returns with the line low.
func (o *Output) Blink(n int, period time.Duration) error {
	for i := 0; i < n; i++ {
		if err := o.On(); err != nil {
			return err
		}
		time.Sleep(period)
		if err := o.Off(); err != nil {
			return err
		}
		time.Sleep(period)
	}
	return nil
}

// Close drives the line low and releases it.
func (o *Output) Close() error {
	if err := o.Off(); err != nil {
		return err
	}
	return o.host.Release(o.Pin)
}
