package servo

import (
	"errors"
	"fmt"
	"time"

	"github.com/robochess/pinctl"
)

const (
	// default servo period
	DEFAULT_SERVO_PERIOD = 20 * time.Millisecond

	// defaults for servo duty
	DEFAULT_DUTY_MIN = 1000 * time.Microsecond
	DEFAULT_DUTY_MAX = 2000 * time.Microsecond
)

type Servo struct {
	host    *pinctl.Host
	Pin     pinctl.Pin
	period  time.Duration
	minDuty time.Duration
	maxDuty time.Duration

	pulse    time.Duration // last pulse written, zero when detached
	attached bool
}

// Create a new servo on pin, claim the pin for PWM and centre the servo.
func New(h *pinctl.Host, pin pinctl.Pin) (*Servo, error) {
	if err := h.PinMode(pin, pinctl.PWM_OUTPUT); err != nil {
		return nil, err
	}

	result := &Servo{host: h, Pin: pin, period: DEFAULT_SERVO_PERIOD}
	err := result.SetRange(DEFAULT_DUTY_MIN, DEFAULT_DUTY_MAX)
	if err == nil {
		err = result.Mid()
	}
	if err != nil {
		return nil, errors.Join(err, h.Release(pin))
	}
	return result, nil
}

// Set the period of each cycle. Servos generally want this to be fixed, typically at 20ms.
func (servo *Servo) SetPeriod(period time.Duration) error {
	if period < servo.maxDuty {
		return fmt.Errorf("%w: period %s is shorter than max pulse %s", pinctl.ErrConfig, period, servo.maxDuty)
	}
	servo.period = period
	if servo.attached {
		return servo.WritePulse(servo.pulse)
	}
	return nil
}

// Set the minimum and maximum pulse for the servo. SetValue and SetAngle map onto this range.
func (servo *Servo) SetRange(min, max time.Duration) error {
	if min <= 0 || max <= min || max > servo.period {
		return fmt.Errorf("%w: bad pulse range %s-%s for period %s", pinctl.ErrConfig, min, max, servo.period)
	}
	servo.minDuty = min
	servo.maxDuty = max
	return nil
}

// SetValue moves the servo to v in [-1, 1]: -1 is the minimum pulse, 0 the
// middle and 1 the maximum.
func (servo *Servo) SetValue(v float64) error {
	if v < -1 || v > 1 {
		return fmt.Errorf("%w: servo value %g outside [-1, 1]", pinctl.ErrConfig, v)
	}
	span := float64(servo.maxDuty - servo.minDuty)
	return servo.WritePulse(servo.minDuty + time.Duration((v+1)/2*span))
}

// Value returns the current position in [-1, 1], and false when detached.
func (servo *Servo) Value() (float64, bool) {
	if !servo.attached {
		return 0, false
	}
	span := float64(servo.maxDuty - servo.minDuty)
	return float64(servo.pulse-servo.minDuty)/span*2 - 1, true
}

func (servo *Servo) Min() error { return servo.SetValue(-1) }
func (servo *Servo) Mid() error { return servo.SetValue(0) }
func (servo *Servo) Max() error { return servo.SetValue(1) }

// Set the servo to the specified angle, 0-180. This sets the duty cycle proportionally between min and max.
func (servo *Servo) SetAngle(angle int) error {
	if angle < 0 || angle > 180 {
		return fmt.Errorf("%w: servo angle %d outside [0, 180]", pinctl.ErrConfig, angle)
	}
	us := pinctl.Map(angle, 0, 180, int(servo.minDuty/time.Microsecond), int(servo.maxDuty/time.Microsecond))
	return servo.WritePulse(time.Duration(us) * time.Microsecond)
}

// Like the Arduino Servo.writeMicroseconds function, this sets the PWM duty directly. Pulses outside the
// configured range are refused.
func (servo *Servo) WritePulse(pulse time.Duration) error {
	if pulse < servo.minDuty || pulse > servo.maxDuty {
		return fmt.Errorf("%w: pulse %s outside %s-%s", pinctl.ErrConfig, pulse, servo.minDuty, servo.maxDuty)
	}
	if err := servo.host.PWMWrite(servo.Pin, servo.period, pulse); err != nil {
		return err
	}
	servo.pulse = pulse
	servo.attached = true
	return nil
}

// Pulse returns the pulse being sent, zero when detached.
func (servo *Servo) Pulse() time.Duration {
	return servo.pulse
}

// Detach stops the pulse train, letting the servo go limp.
func (servo *Servo) Detach() error {
	if err := servo.host.PWMWrite(servo.Pin, servo.period, 0); err != nil {
		return err
	}
	servo.pulse = 0
	servo.attached = false
	return nil
}

// Close detaches the servo and releases its pin.
func (servo *Servo) Close() error {
	if err := servo.Detach(); err != nil {
		return err
	}
	return servo.host.Release(servo.Pin)
}
