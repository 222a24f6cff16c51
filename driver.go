package pinctl

import (
	"fmt"
	"strings"
)

// Driver names accepted by OpenDriver.
const (
	DriverAuto   = "auto"
	DriverPeriph = "periph"
	DriverSysfs  = "sysfs"
	DriverMock   = "mock"
)

// DriverOptions tunes where the drivers look for the system interfaces.
type DriverOptions struct {
	SysfsRoot   string // defaults to DefaultSysfsRoot
	CPUInfoPath string // defaults to DefaultCPUInfoPath
}

// OpenDriver returns the driver called name. "auto" picks periph.io when
// cpuinfo identifies a Raspberry Pi, and fails with ErrEnvironment
// otherwise rather than guess at hardware it doesn't know.
func OpenDriver(name string, opts DriverOptions) (HardwareDriver, error) {
	switch strings.ToLower(name) {
	case DriverPeriph:
		return NewPeriphDriver(), nil
	case DriverSysfs:
		return NewSysfsDriver(opts.SysfsRoot), nil
	case DriverMock:
		return NewMockDriver(), nil
	case DriverAuto, "":
		return determineDriver(opts)
	}
	return nil, fmt.Errorf("%w: unknown driver %q", ErrConfig, name)
}

// Work out the driver from the environment.
func determineDriver(opts DriverOptions) (HardwareDriver, error) {
	path := opts.CPUInfoPath
	if path == "" {
		path = DefaultCPUInfoPath
	}
	info, err := CpuInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrEnvironment, path, err)
	}
	if !IsRaspberryPi(info) {
		return nil, fmt.Errorf("%w: %s does not describe a Raspberry Pi", ErrEnvironment, path)
	}
	return NewPeriphDriver(), nil
}
