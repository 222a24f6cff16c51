// Package console is the operator shell for checking the controller's
// wiring by hand. It claims one handle per board line and runs typed
// commands against them, one per line:
//
//	m1 on
//	s angle 45
//	b1 state
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/shlex"

	"github.com/robochess/pinctl"
	"github.com/robochess/pinctl/board"
	"github.com/robochess/pinctl/devices/button"
	"github.com/robochess/pinctl/devices/output"
	"github.com/robochess/pinctl/servo"
)

// ErrQuit is returned by Exec for quit and exit.
var ErrQuit = errors.New("quit")

// DefaultBlinkPeriod is the half period of the blink command.
const DefaultBlinkPeriod = 250 * time.Millisecond

type closer interface {
	Close() error
}

// Console holds the claimed handles of one session.
type Console struct {
	host    *pinctl.Host
	board   *board.Board
	outputs map[string]*output.Output
	servos  map[string]*servo.Servo
	buttons map[string]*button.Button
	opened  []closer // in claim order
	log     *slog.Logger

	// Prompt is written before each command read by Run.
	Prompt      string
	BlinkPeriod time.Duration
}

// Open claims a handle for every line of b. If any line can't be claimed,
// the lines claimed so far are released and the error is returned: a busy
// pin fails with pinctl.ErrBusy, a bad pin or mode with pinctl.ErrConfig.
func Open(h *pinctl.Host, b *board.Board, log *slog.Logger) (*Console, error) {
	if log == nil {
		log = slog.Default()
	}
	c := &Console{
		host:        h,
		board:       b,
		outputs:     make(map[string]*output.Output),
		servos:      make(map[string]*servo.Servo),
		buttons:     make(map[string]*button.Button),
		log:         log,
		BlinkPeriod: DefaultBlinkPeriod,
	}

	for _, l := range b.Lines {
		if err := c.claim(h, l); err != nil {
			if cerr := c.Close(); cerr != nil {
				log.Warn("release after failed claim", "error", cerr)
			}
			return nil, fmt.Errorf("claim %s (%s): %w", l.Handle, l.Role, err)
		}
		log.Debug("claimed", "handle", l.Handle, "pin", l.Pin, "mode", l.IOMode().String())
	}
	return c, nil
}

func (c *Console) claim(h *pinctl.Host, l board.Line) error {
	switch l.IOMode() {
	case pinctl.OUTPUT:
		o, err := output.New(h, l.GPIO())
		if err != nil {
			return err
		}
		c.outputs[l.Handle] = o
		c.opened = append(c.opened, o)

	case pinctl.PWM_OUTPUT:
		s, err := servo.New(h, l.GPIO())
		if err != nil {
			return err
		}
		c.servos[l.Handle] = s
		c.opened = append(c.opened, s)

	case pinctl.INPUT_PULLDOWN:
		btn, err := button.New(h, l.GPIO())
		if err != nil {
			return err
		}
		handle := l.Handle
		btn.WhenPressed(func() { c.log.Info("button pressed", "handle", handle) })
		btn.WhenReleased(func() { c.log.Info("button released", "handle", handle) })
		c.buttons[l.Handle] = btn
		c.opened = append(c.opened, btn)

	default:
		return fmt.Errorf("%w: no console device for mode %s", pinctl.ErrConfig, l.IOMode())
	}
	return nil
}

// Close releases every handle, last claimed first.
func (c *Console) Close() error {
	var errs []error
	for i := len(c.opened) - 1; i >= 0; i-- {
		errs = append(errs, c.opened[i].Close())
	}
	c.opened = nil
	return errors.Join(errs...)
}

// Handles lists the handle names in board order.
func (c *Console) Handles() []string {
	names := make([]string, 0, len(c.board.Lines))
	for _, l := range c.board.Lines {
		names = append(names, l.Handle)
	}
	return names
}

// Output, Servo and Button give direct access to a handle.
func (c *Console) Output(handle string) *output.Output { return c.outputs[handle] }
func (c *Console) Servo(handle string) *servo.Servo    { return c.servos[handle] }
func (c *Console) Button(handle string) *button.Button { return c.buttons[handle] }

// Run reads commands from r until EOF, quit or ctx is done, writing each
// result to w. Command failures are printed and the loop goes on.
func (c *Console) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Prompt != "" {
			fmt.Fprint(w, c.Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		out, err := c.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.log.Debug("command failed", "line", scanner.Text(), "error", err)
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
}

// Exec runs a single command line and returns what it prints.
func (c *Console) Exec(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return "", nil
	}

	switch args[0] {
	case "quit", "exit":
		return "", ErrQuit
	case "help":
		return c.help(), nil
	case "pins":
		return c.pins(), nil
	case "hwpins":
		var sb strings.Builder
		c.host.DebugPinMap(&sb)
		return strings.TrimSuffix(sb.String(), "\n"), nil
	}

	handle := args[0]
	if len(args) < 2 {
		return "", fmt.Errorf("usage: %s <command>, see help", handle)
	}
	op, rest := args[1], args[2:]

	var table map[string]command
	switch {
	case c.outputs[handle] != nil:
		table = outputCommands
	case c.servos[handle] != nil:
		table = servoCommands
	case c.buttons[handle] != nil:
		table = buttonCommands
	default:
		return "", fmt.Errorf("unknown handle %q (have %s)", handle, strings.Join(c.Handles(), ", "))
	}

	cmd, ok := table[op]
	if !ok {
		return "", fmt.Errorf("%s has no command %q (want %s)", handle, op, strings.Join(commandNames(table), ", "))
	}
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		return "", fmt.Errorf("usage: %s %s", handle, cmd.usage)
	}
	return cmd.run(c, handle, rest)
}

func (c *Console) pins() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tPIN\tMODE\tROLE")
	for _, l := range c.board.Lines {
		mode := "released"
		if m, ok := c.host.Mode(l.GPIO()); ok {
			mode = m.String()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l.Handle, l.Pin, mode, l.Role)
	}
	tw.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

func (c *Console) help() string {
	var sb strings.Builder
	for _, l := range c.board.Lines {
		table := outputCommands
		if c.servos[l.Handle] != nil {
			table = servoCommands
		} else if c.buttons[l.Handle] != nil {
			table = buttonCommands
		}
		for _, name := range commandNames(table) {
			fmt.Fprintf(&sb, "%s %s\n", l.Handle, table[name].usage)
		}
	}
	sb.WriteString("pins\nhwpins\nhelp\nquit")
	return sb.String()
}

func commandNames(table map[string]command) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
