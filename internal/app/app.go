// Package app wires configuration, logging, the hardware driver and the
// board map together for the command line tools.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/robochess/pinctl"
	"github.com/robochess/pinctl/board"
	"github.com/robochess/pinctl/internal/config"
	"github.com/robochess/pinctl/internal/logger"
)

// Env is what every tool starts from.
type Env struct {
	Config *config.Config
	Log    *slog.Logger
	Host   *pinctl.Host
	Board  *board.Board
}

// Open loads the board map, opens the configured driver and claims nothing
// yet. Logs go to logw.
func Open(cfg *config.Config, logw io.Writer) (*Env, error) {
	log := logger.New(cfg.Logger, logw)

	b, err := board.Load(cfg.BoardPath)
	if err != nil {
		return nil, err
	}

	driver, err := pinctl.OpenDriver(cfg.Driver, cfg.DriverOptions())
	if err != nil {
		return nil, fmt.Errorf("open driver: %w", err)
	}
	if mock, ok := driver.(*pinctl.MockDriver); ok {
		mock.SetLogger(log)
		log.Warn("using the mock gpio driver, no hardware is touched")
	}

	h, err := pinctl.NewHost(driver, log)
	if err != nil {
		return nil, err
	}

	log.Debug("gpio host ready", "driver", cfg.Driver, "board", b.Name)
	return &Env{Config: cfg, Log: log, Host: h, Board: b}, nil
}

// Close releases every pin still held.
func (e *Env) Close() error {
	return e.Host.Close()
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
