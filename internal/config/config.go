// Package config reads the PINCTL_* environment variables, the only
// configuration surface of the command line tools.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robochess/pinctl"
)

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Config is the top-level tool configuration.
type Config struct {
	Driver      string // auto, periph, sysfs, mock
	BoardPath   string // empty for the embedded board map
	SysfsRoot   string
	CPUInfoPath string
	Logger      LoggerConfig
}

// Defaults returns the configuration used when no variable is set.
func Defaults() *Config {
	return &Config{
		Driver:      pinctl.DriverAuto,
		SysfsRoot:   pinctl.DefaultSysfsRoot,
		CPUInfoPath: pinctl.DefaultCPUInfoPath,
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromEnv returns Defaults overridden by the environment.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	ApplyEnvOverrides(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides copies every set PINCTL_* variable into cfg.
func ApplyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("PINCTL_DRIVER"); v != "" {
		cfg.Driver = strings.ToLower(v)
	}
	if v := getenv("PINCTL_BOARD"); v != "" {
		cfg.BoardPath = v
	}
	if v := getenv("PINCTL_SYSFS_ROOT"); v != "" {
		cfg.SysfsRoot = v
	}
	if v := getenv("PINCTL_CPUINFO"); v != "" {
		cfg.CPUInfoPath = v
	}
	if v := getenv("PINCTL_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := getenv("PINCTL_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
}

// Validate rejects values no driver or logger understands.
func Validate(cfg *Config) error {
	switch cfg.Driver {
	case pinctl.DriverAuto, pinctl.DriverPeriph, pinctl.DriverSysfs, pinctl.DriverMock:
	default:
		return fmt.Errorf("%w: PINCTL_DRIVER %q (want auto, periph, sysfs or mock)", pinctl.ErrConfig, cfg.Driver)
	}
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: PINCTL_LOG_LEVEL %q (want debug, info, warn or error)", pinctl.ErrConfig, cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: PINCTL_LOG_FORMAT %q (want text or json)", pinctl.ErrConfig, cfg.Logger.Format)
	}
	return nil
}

// DriverOptions returns the options for pinctl.OpenDriver.
func (c *Config) DriverOptions() pinctl.DriverOptions {
	return pinctl.DriverOptions{SysfsRoot: c.SysfsRoot, CPUInfoPath: c.CPUInfoPath}
}
