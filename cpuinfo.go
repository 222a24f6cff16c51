// Contains a helper for getting named properties out of /proc/cpuinfo, used to recognise the board we run on.
// Duplicate properties are overridden, so on multi-processor systems the values will generally be those for the
// last processor.

package pinctl

import (
	"bufio"
	"os"
	"strings"
)

// DefaultCPUInfoPath is the kernel's cpuinfo file.
const DefaultCPUInfoPath = "/proc/cpuinfo"

// CpuInfo returns every "name : value" property of the cpuinfo file at path.
func CpuInfo(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		// split on the first colon, and trim both sides
		i := strings.Index(line, ":")
		if i >= 0 {
			name := strings.Trim(line[0:i], " \t")
			value := strings.Trim(line[i+1:], " \t")
			info[name] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

// IsRaspberryPi reports whether the cpuinfo properties describe a Raspberry
// Pi. Newer kernels only set "Model"; older ones name the SoC in "Hardware".
func IsRaspberryPi(info map[string]string) bool {
	if strings.Contains(info["Model"], "Raspberry Pi") {
		return true
	}
	return strings.HasPrefix(info["Hardware"], "BCM")
}
