// pininit forces the stepper driver GPIOs into output mode. Run it once at
// boot, before the controller, so floating step pins can't move the motors.
//
// It prints one "GPIO no <N>: <level>" line per pin and exits non-zero if
// the GPIO hardware can't be reached or a pin can't be claimed.
package main

import (
	"os"

	"github.com/robochess/pinctl/internal/app"
	"github.com/robochess/pinctl/internal/config"
	"github.com/robochess/pinctl/pininit"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("pininit: " + err.Error() + "\n")
		return 1
	}

	env, err := app.Open(cfg, os.Stderr)
	if err != nil {
		os.Stderr.WriteString("pininit: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := env.Close(); err != nil {
			env.Log.Error("release gpio lines", "error", err)
		}
	}()

	_, err = pininit.Run(env.Host, env.Board.InitPins(), os.Stdout, env.Log)
	if err != nil {
		env.Log.Error("gpio initialisation failed", "error", err)
	}
	return app.ExitCode(err)
}
