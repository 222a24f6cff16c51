package pinctl

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Error classes. Every error returned by a driver or by Host wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrEnvironment means the GPIO subsystem is unavailable: wrong hardware
	// or no driver for it.
	ErrEnvironment = errors.New("gpio subsystem unavailable")

	// ErrPermission means the process may not access the GPIO hardware.
	ErrPermission = errors.New("gpio permission denied")

	// ErrBusy means the pin is already claimed by another holder.
	ErrBusy = errors.New("gpio pin busy")

	// ErrConfig means an invalid pin number, mode or argument.
	ErrConfig = errors.New("gpio configuration error")
)

// PinError records the pin and operation that failed.
type PinError struct {
	Pin Pin
	Op  string
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("%s pin %d: %v", e.Op, e.Pin, e.Err)
}

func (e *PinError) Unwrap() error {
	return e.Err
}

func pinError(pin Pin, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PinError
	if errors.As(err, &pe) && pe.Pin == pin {
		return err
	}
	return &PinError{Pin: pin, Op: op, Err: err}
}

// classifyOSError maps an OS level failure onto the error classes. Errors
// that are already classified pass through unchanged.
func classifyOSError(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range []error{ErrEnvironment, ErrPermission, ErrBusy, ErrConfig} {
		if errors.Is(err, class) {
			return err
		}
	}
	switch {
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w: %w", ErrBusy, err)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	case errors.Is(err, unix.EINVAL):
		return fmt.Errorf("%w: %w", ErrConfig, err)
	case errors.Is(err, os.ErrNotExist), errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %w", ErrEnvironment, err)
	}
	return err
}
