// Package pininit forces the stepper driver lines into output mode at boot.
//
// Out of reset the Pi leaves its GPIOs floating as inputs. The step pins of
// the stepper drivers then pick up noise and the motors can start to spin,
// which can destroy the belts. Run must happen before any motor logic.
package pininit

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/robochess/pinctl"
)

// Reading is the level of one pin after initialisation.
type Reading struct {
	Pin   pinctl.Pin
	Level int
}

func (r Reading) String() string {
	return fmt.Sprintf("GPIO no %d: %d", r.Pin, r.Level)
}

// Run sets every pin in pins to output, keeping its current level, then
// reads each one back and writes one "GPIO no <N>: <level>" line per pin to
// w, in the order given. The first failure stops the run.
func Run(h *pinctl.Host, pins []pinctl.Pin, w io.Writer, log *slog.Logger) ([]Reading, error) {
	if log == nil {
		log = slog.Default()
	}

	for _, pin := range pins {
		if err := h.PinMode(pin, pinctl.OUTPUT); err != nil {
			return nil, fmt.Errorf("set output mode: %w", err)
		}
		log.Debug("pin forced to output", "pin", int(pin))
	}

	readings := make([]Reading, 0, len(pins))
	for _, pin := range pins {
		level, err := h.DigitalRead(pin)
		if err != nil {
			return readings, fmt.Errorf("read back: %w", err)
		}
		r := Reading{Pin: pin, Level: level}
		readings = append(readings, r)
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return readings, fmt.Errorf("write report: %w", err)
		}
	}

	log.Info("gpio lines initialised", "pins", len(pins))
	return readings, nil
}
