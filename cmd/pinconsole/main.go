// pinconsole claims the controller's motor, direction, servo and button
// lines and reads commands for them from stdin, to check the wiring before
// building the controller. Type help for the command list.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robochess/pinctl/console"
	"github.com/robochess/pinctl/internal/app"
	"github.com/robochess/pinctl/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("pinconsole: " + err.Error() + "\n")
		return 1
	}

	env, err := app.Open(cfg, os.Stderr)
	if err != nil {
		os.Stderr.WriteString("pinconsole: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := env.Close(); err != nil {
			env.Log.Error("release gpio lines", "error", err)
		}
	}()

	c, err := console.Open(env.Host, env.Board, env.Log)
	if err != nil {
		env.Log.Error("claim gpio lines", "error", err)
		return 1
	}
	defer func() {
		if err := c.Close(); err != nil {
			env.Log.Error("release handles", "error", err)
		}
	}()

	// An interrupt is seen between commands, so the lines are still
	// released on the way out.
	c.Prompt = "> "
	env.Log.Info("console ready", "handles", c.Handles())
	err = c.Run(ctx, os.Stdin, os.Stdout)
	if err != nil && ctx.Err() == nil {
		env.Log.Error("console", "error", err)
		return 1
	}
	return 0
}
