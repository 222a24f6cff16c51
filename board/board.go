// Package board holds the controller's GPIO line assignments: which role
// sits on which BCM pin, in which mode. The pin initializer and the device
// console both read it, so their pin lists can't drift apart.
package board

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robochess/pinctl"
)

//go:embed board.yaml
var defaultBoard []byte

// Line assigns one role to one pin.
type Line struct {
	Handle string `yaml:"handle"`
	Role   string `yaml:"role"`
	Pin    int    `yaml:"pin"`
	Mode   string `yaml:"mode"`

	mode pinctl.PinIOMode
}

// Board is the full map of a controller.
type Board struct {
	Name      string `yaml:"name"`
	InitOrder []int  `yaml:"init_order"`
	Lines     []Line `yaml:"lines"`
}

// IOMode returns the parsed mode. Only valid on a Board returned by Parse,
// Load or Default.
func (l Line) IOMode() pinctl.PinIOMode {
	return l.mode
}

// GPIO returns the pin as a pinctl.Pin.
func (l Line) GPIO() pinctl.Pin {
	return pinctl.Pin(l.Pin)
}

// Default returns the board compiled into the binary.
func Default() *Board {
	b, err := Parse(defaultBoard)
	if err != nil {
		panic(fmt.Sprintf("embedded board map is invalid: %v", err))
	}
	return b
}

// Load reads a board map from path, or returns Default when path is empty.
func Load(path string) (*Board, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board map: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("board map %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a YAML board map. Unknown keys are rejected.
func Parse(data []byte) (*Board, error) {
	var b Board
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse board map: %w", pinctl.ErrConfig, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// InitPins returns the pins the initializer forces to output, in order.
func (b *Board) InitPins() []pinctl.Pin {
	pins := make([]pinctl.Pin, len(b.InitOrder))
	for i, n := range b.InitOrder {
		pins[i] = pinctl.Pin(n)
	}
	return pins
}

// Line looks up a line by handle.
func (b *Board) Line(handle string) (Line, bool) {
	for _, l := range b.Lines {
		if l.Handle == handle {
			return l, true
		}
	}
	return Line{}, false
}

// ValidationError accumulates board map problems.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "board map validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// Unwrap classifies every validation failure as a configuration error.
func (v *ValidationError) Unwrap() error {
	return pinctl.ErrConfig
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

var handleRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ReservedHandles are console command words, unusable as handle names.
var ReservedHandles = []string{"help", "pins", "hwpins", "quit", "exit"}

// Validate checks the map for structural correctness and parses the line
// modes. It returns a *ValidationError listing every problem found.
func (b *Board) Validate() error {
	ve := &ValidationError{}
	handles := make(map[string]bool)
	byPin := make(map[int]*Line)

	for i := range b.Lines {
		l := &b.Lines[i]
		if !handleRe.MatchString(l.Handle) {
			ve.Add("line %d: handle %q must be a lower case identifier", i, l.Handle)
		} else if slices.Contains(ReservedHandles, l.Handle) {
			ve.Add("line %d: handle %q is a console command", i, l.Handle)
		} else if handles[l.Handle] {
			ve.Add("line %d: duplicate handle %q", i, l.Handle)
		}
		handles[l.Handle] = true

		if l.Pin < 0 || l.Pin > pinctl.MaxBCMPin {
			ve.Add("%s: pin %d is not a BCM GPIO (0-%d)", l.Handle, l.Pin, pinctl.MaxBCMPin)
		} else if other, ok := byPin[l.Pin]; ok {
			ve.Add("%s: pin %d already assigned to %s", l.Handle, l.Pin, other.Handle)
		} else {
			byPin[l.Pin] = l
		}

		mode, err := pinctl.ParseMode(l.Mode)
		if err != nil {
			ve.Add("%s: unknown mode %q", l.Handle, l.Mode)
		}
		l.mode = mode
	}

	seen := make(map[int]bool)
	for _, n := range b.InitOrder {
		if seen[n] {
			ve.Add("init_order: pin %d listed twice", n)
		}
		seen[n] = true

		l, ok := byPin[n]
		if !ok {
			ve.Add("init_order: pin %d has no line", n)
			continue
		}
		if !l.mode.IsOutput() {
			ve.Add("init_order: pin %d (%s) is an input and must not be forced to output", n, l.Handle)
		}
	}

	outputs := 0
	for _, l := range b.Lines {
		if l.mode.IsOutput() {
			outputs++
			if !seen[l.Pin] && len(b.InitOrder) > 0 {
				ve.Add("%s: output pin %d missing from init_order", l.Handle, l.Pin)
			}
		}
	}
	if outputs > 0 && len(b.InitOrder) == 0 {
		ve.Add("init_order is empty but %d output lines are declared", outputs)
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
