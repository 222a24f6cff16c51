package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robochess/pinctl"
	"github.com/robochess/pinctl/internal/config"
)

func TestOpenMock(t *testing.T) {
	cfg := config.Defaults()
	cfg.Driver = pinctl.DriverMock

	var logs bytes.Buffer
	env, err := Open(cfg, &logs)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "robochess", env.Board.Name)
	assert.IsType(t, &pinctl.MockDriver{}, env.Host.Driver())
	assert.Contains(t, logs.String(), "using the mock gpio driver")
}

func TestOpenEnvironmentError(t *testing.T) {
	cfg := config.Defaults()
	cfg.CPUInfoPath = filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(cfg.CPUInfoPath, []byte("vendor_id : GenuineIntel\n"), 0o644))

	_, err := Open(cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, pinctl.ErrEnvironment)
}

func TestOpenSysfsMissing(t *testing.T) {
	cfg := config.Defaults()
	cfg.Driver = pinctl.DriverSysfs
	cfg.SysfsRoot = filepath.Join(t.TempDir(), "gpio")

	_, err := Open(cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, pinctl.ErrEnvironment)
}

func TestOpenBadBoard(t *testing.T) {
	cfg := config.Defaults()
	cfg.Driver = pinctl.DriverMock
	cfg.BoardPath = filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(cfg.BoardPath, []byte("lines: [{handle: m1, pin: 99, mode: output}]"), 0o644))

	_, err := Open(cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, pinctl.ErrConfig)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}
