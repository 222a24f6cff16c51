// Package button reads a push button wired between a GPIO and 3.3V. The
// line is biased low with the internal pull-down, so a pressed button reads
// HIGH and a released or floating one reads LOW.
//
// There is no background watcher and no debouncing: the state is sampled
// when IsPressed or Poll is called.
package button

import (
	"github.com/robochess/pinctl"
)

type Button struct {
	host *pinctl.Host
	Pin  pinctl.Pin

	pressed      bool
	whenPressed  func()
	whenReleased func()
}

// New claims pin as an input with pull-down.
func New(h *pinctl.Host, pin pinctl.Pin) (*Button, error) {
	if err := h.PinMode(pin, pinctl.INPUT_PULLDOWN); err != nil {
		return nil, err
	}
	b := &Button{host: h, Pin: pin}
	pressed, err := b.IsPressed()
	if err != nil {
		return nil, err
	}
	b.pressed = pressed
	return b, nil
}

// IsPressed samples the line.
func (b *Button) IsPressed() (bool, error) {
	v, err := b.host.DigitalRead(b.Pin)
	if err != nil {
		return false, err
	}
	return v == pinctl.HIGH, nil
}

// State returns "pressed" or "released".
func (b *Button) State() (string, error) {
	pressed, err := b.IsPressed()
	if err != nil {
		return "", err
	}
	return stateName(pressed), nil
}

// WhenPressed sets the hook Poll runs on a released to pressed change.
func (b *Button) WhenPressed(fn func()) {
	b.whenPressed = fn
}

// WhenReleased sets the hook Poll runs on a pressed to released change.
func (b *Button) WhenReleased(fn func()) {
	b.whenReleased = fn
}

// Poll samples the line once and, if the state differs from the last
// sample, runs the matching hook. It reports whether the state changed.
func (b *Button) Poll() (bool, error) {
	pressed, err := b.IsPressed()
	if err != nil {
		return false, err
	}
	if pressed == b.pressed {
		return false, nil
	}
	b.pressed = pressed

	hook := b.whenReleased
	if pressed {
		hook = b.whenPressed
	}
	if hook != nil {
		hook()
	}
	return true, nil
}

// Close releases the line.
func (b *Button) Close() error {
	return b.host.Release(b.Pin)
}

func stateName(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}
