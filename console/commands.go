package console

import (
	"fmt"
	"strconv"

	"github.com/robochess/pinctl"
)

type command struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(c *Console, handle string, args []string) (string, error)
}

var outputCommands = map[string]command{
	"on": {
		usage: "on",
		run: func(c *Console, h string, _ []string) (string, error) {
			if err := c.outputs[h].On(); err != nil {
				return "", err
			}
			return levelLine(h, pinctl.HIGH), nil
		},
	},
	"off": {
		usage: "off",
		run: func(c *Console, h string, _ []string) (string, error) {
			if err := c.outputs[h].Off(); err != nil {
				return "", err
			}
			return levelLine(h, pinctl.LOW), nil
		},
	},
	"toggle": {
		usage: "toggle",
		run: func(c *Console, h string, _ []string) (string, error) {
			v, err := c.outputs[h].Toggle()
			if err != nil {
				return "", err
			}
			return levelLine(h, v), nil
		},
	},
	"value": {
		usage: "value",
		run: func(c *Console, h string, _ []string) (string, error) {
			v, err := c.outputs[h].Value()
			if err != nil {
				return "", err
			}
			return levelLine(h, v), nil
		},
	},
	"blink": {
		usage:   "blink <count>",
		minArgs: 1,
		maxArgs: 1,
		run: func(c *Console, h string, args []string) (string, error) {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return "", fmt.Errorf("%w: blink count must be a positive integer, got %q", pinctl.ErrConfig, args[0])
			}
			if err := c.outputs[h].Blink(n, c.BlinkPeriod); err != nil {
				return "", err
			}
			return levelLine(h, pinctl.LOW), nil
		},
	},
}

var servoCommands = map[string]command{
	"min": {
		usage: "min",
		run: func(c *Console, h string, _ []string) (string, error) {
			return servoResult(c, h, c.servos[h].Min())
		},
	},
	"mid": {
		usage: "mid",
		run: func(c *Console, h string, _ []string) (string, error) {
			return servoResult(c, h, c.servos[h].Mid())
		},
	},
	"max": {
		usage: "max",
		run: func(c *Console, h string, _ []string) (string, error) {
			return servoResult(c, h, c.servos[h].Max())
		},
	},
	"value": {
		usage:   "value [-1..1]",
		maxArgs: 1,
		run: func(c *Console, h string, args []string) (string, error) {
			if len(args) == 0 {
				return servoResult(c, h, nil)
			}
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return "", fmt.Errorf("%w: servo value must be a number, got %q", pinctl.ErrConfig, args[0])
			}
			return servoResult(c, h, c.servos[h].SetValue(v))
		},
	},
	"angle": {
		usage:   "angle <0..180>",
		minArgs: 1,
		maxArgs: 1,
		run: func(c *Console, h string, args []string) (string, error) {
			deg, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("%w: servo angle must be an integer, got %q", pinctl.ErrConfig, args[0])
			}
			return servoResult(c, h, c.servos[h].SetAngle(deg))
		},
	},
	"detach": {
		usage: "detach",
		run: func(c *Console, h string, _ []string) (string, error) {
			return servoResult(c, h, c.servos[h].Detach())
		},
	},
}

var buttonCommands = map[string]command{
	"state": {
		usage: "state",
		run: func(c *Console, h string, _ []string) (string, error) {
			state, err := c.buttons[h].State()
			if err != nil {
				return "", err
			}
			return h + ": " + state, nil
		},
	},
	"poll": {
		usage: "poll",
		run: func(c *Console, h string, _ []string) (string, error) {
			b := c.buttons[h]
			changed, err := b.Poll()
			if err != nil {
				return "", err
			}
			state, err := b.State()
			if err != nil {
				return "", err
			}
			if changed {
				return h + ": " + state + " (changed)", nil
			}
			return h + ": " + state, nil
		},
	},
}

func levelLine(handle string, level int) string {
	return fmt.Sprintf("%s: %d", handle, level)
}

// servoResult reports the servo position after a move, or the move's error.
func servoResult(c *Console, h string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s := c.servos[h]
	v, attached := s.Value()
	if !attached {
		return h + ": detached", nil
	}
	return fmt.Sprintf("%s: value=%.2f pulse=%s", h, v, s.Pulse()), nil
}
